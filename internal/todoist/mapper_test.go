package todoist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/taskbridge/internal/task"
)

func TestMapToRecord(t *testing.T) {
	projects := map[string]string{"proj-1": "Inbox"}

	t.Run("FullTask", func(t *testing.T) {
		rec, err := mapToRecord(taskObject{
			ID:          "123",
			Content:     "Buy milk",
			ProjectID:   "proj-1",
			IsCompleted: true,
			Priority:    3,
			Labels:      []string{"errand"},
			Due:         &dueObject{Datetime: "2026-03-01T10:00:00Z"},
			CreatedAt:   "2026-02-01T08:00:00Z",
			UpdatedAt:   "2026-02-20T08:00:00Z",
		}, projects)
		require.NoError(t, err)

		assert.Equal(t, "123", rec.TodoistID)
		assert.Equal(t, "Buy milk", rec.Title)
		assert.True(t, rec.Completed)
		assert.Equal(t, task.PriorityHigh, rec.Priority)
		assert.Equal(t, "Inbox", rec.Project)
		assert.Equal(t, []string{"errand"}, rec.Labels)
		require.NotNil(t, rec.Due)
		assert.False(t, rec.Due.DateOnly)
		assert.True(t, rec.Due.Start.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
		assert.True(t, rec.LastEdited.Equal(time.Date(2026, 2, 20, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("Defaults", func(t *testing.T) {
		rec, err := mapToRecord(taskObject{ID: "1"}, nil)
		require.NoError(t, err)
		assert.Empty(t, rec.Title)
		assert.False(t, rec.Completed)
		assert.Equal(t, task.PriorityNone, rec.Priority)
		assert.Nil(t, rec.Due)
		assert.Empty(t, rec.Project)
	})

	t.Run("UnknownProject", func(t *testing.T) {
		rec, err := mapToRecord(taskObject{ID: "1", ProjectID: "gone"}, projects)
		require.NoError(t, err)
		assert.Equal(t, UnknownProject, rec.Project)
	})

	t.Run("AllDayDue", func(t *testing.T) {
		rec, err := mapToRecord(taskObject{ID: "1", Due: &dueObject{Date: "2026-03-01"}}, nil)
		require.NoError(t, err)
		require.NotNil(t, rec.Due)
		assert.True(t, rec.Due.DateOnly)
	})

	t.Run("UpdatedAtFallsBackToCreatedAt", func(t *testing.T) {
		rec, err := mapToRecord(taskObject{ID: "1", CreatedAt: "2026-02-01T08:00:00Z"}, nil)
		require.NoError(t, err)
		assert.True(t, rec.LastEdited.Equal(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("Malformed", func(t *testing.T) {
		cases := map[string]taskObject{
			"MissingID":    {Content: "no id"},
			"BadPriority":  {ID: "1", Priority: 9},
			"BadDue":       {ID: "1", Due: &dueObject{Datetime: "not a time"}},
			"BadTimestamp": {ID: "1", CreatedAt: "yesterday"},
		}
		for name, obj := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := mapToRecord(obj, nil)
				assert.ErrorIs(t, err, task.ErrMalformedRecord)
			})
		}
	})
}

// Round-trip: a record mapped to the create payload and read back keeps
// every field this mapper owns (title, priority, due, labels).
func TestMapRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := task.Task{
		TodoistID: "123",
		Title:     "Round trip",
		Priority:  task.PriorityMedium,
		Labels:    []string{"a", "b"},
		Due:       &task.Due{Start: start},
	}

	req := mapFromRecord(&rec)
	back, err := mapToRecord(taskObject{
		ID:       "123",
		Content:  req.Content,
		Priority: req.Priority,
		Labels:   req.Labels,
		Due:      &dueObject{Date: req.DueDate, Datetime: req.DueDatetime},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, rec.Title, back.Title)
	assert.Equal(t, rec.Priority, back.Priority)
	assert.Equal(t, rec.Labels, back.Labels)
	assert.True(t, rec.Due.Equal(back.Due))
}

func TestMapFromPatch(t *testing.T) {
	t.Run("OnlyChangedFields", func(t *testing.T) {
		title := "New"
		req := mapFromPatch(task.Patch{Title: &title})
		assert.Equal(t, "New", req.Content)
		assert.Zero(t, req.Priority)
		assert.Nil(t, req.Labels)
		assert.Empty(t, req.DueDate)
	})

	t.Run("ClearDue", func(t *testing.T) {
		req := mapFromPatch(task.Patch{Due: &task.DuePatch{}})
		assert.Equal(t, clearDue, req.DueString)
	})

	t.Run("CompletionExcluded", func(t *testing.T) {
		completed := true
		req := mapFromPatch(task.Patch{Completed: &completed})
		assert.Equal(t, taskRequest{}, req)
	})
}
