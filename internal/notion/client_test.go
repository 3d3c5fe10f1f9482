package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/taskbridge/internal/syncer"
	"github.com/saulo-duarte/taskbridge/internal/task"
)

const testDatabaseID = "db-1"

// fakeNotion serves the handful of endpoints the client uses and records
// every request body for assertions.
type fakeNotion struct {
	mu       sync.Mutex
	requests []recordedRequest

	queryPages [][]pageObject
	createdID  string
	page       pageObject
}

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func (f *fakeNotion) record(r *http.Request) recordedRequest {
	rec := recordedRequest{method: r.Method, path: r.URL.Path}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()
	return rec
}

func (f *fakeNotion) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newFakeNotion(t *testing.T, f *fakeNotion) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /databases/"+testDatabaseID+"/query", func(w http.ResponseWriter, r *http.Request) {
		rec := f.record(r)

		page := 0
		if cursor, ok := rec.body["start_cursor"].(string); ok && cursor != "" {
			page = len(f.queryPages) - 1 // cursor is only ever "next" in these tests
		}
		resp := queryResponse{Results: f.queryPages[page]}
		if page < len(f.queryPages)-1 {
			resp.HasMore = true
			resp.NextCursor = "next"
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("POST /pages", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, pageObject{ID: f.createdID})
	})
	mux.HandleFunc("GET /pages/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, f.page)
	})
	mux.HandleFunc("PATCH /pages/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, pageObject{ID: r.PathValue("id")})
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Notion-Version") != APIVersion {
			http.Error(w, "missing Notion-Version header", http.StatusBadRequest)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return NewClientWithHTTPClient(srv.Client(), srv.URL, testDatabaseID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientListTasks(t *testing.T) {
	t.Run("FollowsPagination", func(t *testing.T) {
		fake := &fakeNotion{queryPages: [][]pageObject{
			{{ID: "page-1", Properties: map[string]property{PropName: {Title: []richText{text("first")}}}}},
			{{ID: "page-2", Properties: map[string]property{PropName: {Title: []richText{text("second")}}}}},
		}}
		client := newFakeNotion(t, fake)

		records, err := client.ListTasks(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "first", records[0].Title)
		assert.Equal(t, "second", records[1].Title)

		requests := fake.recorded()
		require.Len(t, requests, 2)
		assert.Equal(t, "next", requests[1].body["start_cursor"])
	})

	t.Run("SkipsArchivedAndUnmappable", func(t *testing.T) {
		fake := &fakeNotion{queryPages: [][]pageObject{{
			{ID: "page-1", Archived: true, Properties: map[string]property{}},
			{ID: "page-2", LastEditedTime: "bogus", Properties: map[string]property{}},
			{ID: "page-3", Properties: map[string]property{PropName: {Title: []richText{text("kept")}}}},
		}}}
		client := newFakeNotion(t, fake)

		records, err := client.ListTasks(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "page-3", records[0].NotionPageID)
	})
}

func TestClientGetTask(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		fake := &fakeNotion{page: pageObject{
			ID: "page-1",
			Properties: map[string]property{
				PropName: {Title: []richText{text("Still here")}},
				PropDone: checkbox(true),
			},
		}}
		client := newFakeNotion(t, fake)

		rec, found, err := client.GetTask(context.Background(), "page-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Still here", rec.Title)
		assert.True(t, rec.Completed)
	})

	t.Run("ArchivedCountsAsGone", func(t *testing.T) {
		fake := &fakeNotion{page: pageObject{ID: "page-1", Archived: true, Properties: map[string]property{}}}
		client := newFakeNotion(t, fake)

		_, found, err := client.GetTask(context.Background(), "page-1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("NotFound", func(t *testing.T) {
		client := newFakeNotion(t, &fakeNotion{})

		_, found, err := client.GetTask(context.Background(), "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestClientCreateTask(t *testing.T) {
	fake := &fakeNotion{createdID: "page-9"}
	client := newFakeNotion(t, fake)
	client.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }

	id, err := client.CreateTask(context.Background(), &task.Task{
		TodoistID: "123",
		Title:     "New page",
		Priority:  task.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "page-9", id)

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/pages", requests[0].path)

	parent := requests[0].body["parent"].(map[string]any)
	assert.Equal(t, testDatabaseID, parent["database_id"])

	props := requests[0].body["properties"].(map[string]any)
	assert.Contains(t, props, PropName)
	assert.Contains(t, props, PropTodoistID)
	assert.Contains(t, props, PropLastSyncTime)
}

func TestClientUpdateTask(t *testing.T) {
	fake := &fakeNotion{}
	client := newFakeNotion(t, fake)

	title := "Renamed"
	err := client.UpdateTask(context.Background(), "page-1", task.Patch{Title: &title})
	require.NoError(t, err)

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "PATCH", requests[0].method)
	assert.Equal(t, "/pages/page-1", requests[0].path)

	props := requests[0].body["properties"].(map[string]any)
	assert.Contains(t, props, PropName)
	assert.Contains(t, props, PropLastSyncTime)
	assert.NotContains(t, props, PropDone)
}

func TestClientDeleteTask(t *testing.T) {
	t.Run("Archives", func(t *testing.T) {
		fake := &fakeNotion{}
		client := newFakeNotion(t, fake)

		require.NoError(t, client.DeleteTask(context.Background(), "page-1"))

		requests := fake.recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, "/pages/page-1", requests[0].path)
		assert.Equal(t, true, requests[0].body["archived"])
	})

	t.Run("AlreadyGone", func(t *testing.T) {
		fake := &fakeNotion{}
		client := newFakeNotion(t, fake)

		require.NoError(t, client.DeleteTask(context.Background(), "missing"))
	})
}

func TestClientLinkCounterpart(t *testing.T) {
	fake := &fakeNotion{}
	client := newFakeNotion(t, fake)

	require.NoError(t, client.LinkCounterpart(context.Background(), "page-1", "123"))

	requests := fake.recorded()
	require.Len(t, requests, 1)

	props := requests[0].body["properties"].(map[string]any)
	prop := props[PropTodoistID].(map[string]any)
	parts := prop["rich_text"].([]any)
	require.Len(t, parts, 1)
	content := parts[0].(map[string]any)["text"].(map[string]any)
	assert.Equal(t, "123", content["content"])
}

func TestClientErrorClassification(t *testing.T) {
	statuses := map[string]int{
		"Unauthorized": http.StatusUnauthorized,
		"Forbidden":    http.StatusForbidden,
		"RateLimited":  http.StatusTooManyRequests,
		"ServerError":  http.StatusInternalServerError,
	}
	for name, status := range statuses {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			t.Cleanup(srv.Close)
			client := NewClientWithHTTPClient(srv.Client(), srv.URL, testDatabaseID)

			_, err := client.ListTasks(context.Background())
			assert.ErrorIs(t, err, syncer.ErrProviderUnavailable)
		})
	}

	t.Run("ClientErrorIsNotUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "validation failed", http.StatusBadRequest)
		}))
		t.Cleanup(srv.Close)
		client := NewClientWithHTTPClient(srv.Client(), srv.URL, testDatabaseID)

		_, err := client.ListTasks(context.Background())
		require.Error(t, err)
		assert.NotErrorIs(t, err, syncer.ErrProviderUnavailable)
	})
}
