package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/saulo-duarte/taskbridge/internal/config"
	"github.com/saulo-duarte/taskbridge/internal/syncer"
	"github.com/saulo-duarte/taskbridge/internal/task"
)

const (
	// DefaultBaseURL is the Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com/v1"

	// APIVersion is sent as the Notion-Version header on every call.
	APIVersion = "2022-06-28"

	// APITimeout bounds each individual API call.
	APITimeout = 15 * time.Second

	queryPageSize = 100
)

// Client talks to the Notion API, treating one database as a task list.
// It implements syncer.Provider for the workspace side of the sync.
type Client struct {
	http       *http.Client
	baseURL    string
	databaseID string
	now        func() time.Time
}

// NewClient builds a client for the given integration token and database.
func NewClient(token, databaseID string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		http:       oauth2.NewClient(context.Background(), src),
		baseURL:    DefaultBaseURL,
		databaseID: databaseID,
		now:        time.Now,
	}
}

// NewClientWithHTTPClient builds a client against a custom HTTP client and
// base URL (for testing).
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, databaseID string) *Client {
	return &Client{http: httpClient, baseURL: baseURL, databaseID: databaseID, now: time.Now}
}

func (c *Client) Name() string { return "notion" }

// ListTasks queries the database, following pagination, and maps each page
// to the shared record. Pages that fail mapping are logged and skipped.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	log := config.WithContext(ctx)

	var records []task.Task
	cursor := ""
	for {
		req := queryRequest{StartCursor: cursor, PageSize: queryPageSize}
		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", req, &resp); err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			if page.Archived {
				continue
			}
			rec, err := mapToRecord(page)
			if err != nil {
				log.WithError(err).WithField("page_id", page.ID).Warn("Skipping unmappable workspace page")
				continue
			}
			records = append(records, rec)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return records, nil
}

// GetTask retrieves one page by ID. An archived or missing page counts as
// gone; completed pages stay in the database, so on this side only an
// archive makes a task vanish.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, bool, error) {
	var page pageObject
	err := c.do(ctx, http.MethodGet, "/pages/"+id, nil, &page)
	if errors.Is(err, errNotFound) {
		return task.Task{}, false, nil
	}
	if err != nil {
		return task.Task{}, false, err
	}
	if page.Archived {
		return task.Task{}, false, nil
	}

	rec, err := mapToRecord(page)
	if err != nil {
		return task.Task{}, false, err
	}
	return rec, true, nil
}

// CreateTask creates a page for t in the database, carrying the
// cross-reference when t already has a tracker ID.
func (c *Client) CreateTask(ctx context.Context, t *task.Task) (string, error) {
	req := createPageRequest{
		Parent:     pageParent{DatabaseID: c.databaseID},
		Properties: mapFromRecord(t, c.now()),
	}
	var page pageObject
	if err := c.do(ctx, http.MethodPost, "/pages", req, &page); err != nil {
		return "", err
	}
	if page.ID == "" {
		return "", fmt.Errorf("%w: create returned no page id", task.ErrMalformedRecord)
	}
	return page.ID, nil
}

// UpdateTask patches the changed properties and stamps the sync time.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	req := updatePageRequest{Properties: mapFromPatch(patch, c.now())}
	return c.do(ctx, http.MethodPatch, "/pages/"+id, req, nil)
}

// DeleteTask archives the page; Notion has no hard delete over the API.
// An already-archived or missing page counts as deleted.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	archived := true
	err := c.do(ctx, http.MethodPatch, "/pages/"+id, updatePageRequest{Archived: &archived}, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

// LinkCounterpart writes the tracker ID into the page's cross-reference
// property.
func (c *Client) LinkCounterpart(ctx context.Context, id, counterpartID string) error {
	req := updatePageRequest{
		Properties: map[string]property{
			PropTodoistID: {RichText: []richText{text(counterpartID)}},
		},
	}
	return c.do(ctx, http.MethodPatch, "/pages/"+id, req, nil)
}

var errNotFound = errors.New("not found")

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode notion request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Notion-Version", APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: notion: %v", syncer.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: notion response: %v", task.ErrMalformedRecord, err)
	}
	return nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: notion token expired or invalid (HTTP %d)", syncer.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: notion rate limited", syncer.ErrProviderUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: notion HTTP %d", syncer.ErrProviderUnavailable, resp.StatusCode)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notion HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
}
