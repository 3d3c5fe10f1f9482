package todoist

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
	// DefaultBaseURL is the Todoist REST v2 endpoint.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"

	// APITimeout bounds each individual API call.
	APITimeout = 15 * time.Second
)

// Client talks to the Todoist REST v2 API. It implements syncer.Provider
// for the tracker side of the sync.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient builds a client authenticating with the given API token.
func NewClient(token string) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		http:    oauth2.NewClient(context.Background(), src),
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithHTTPClient builds a client against a custom HTTP client and
// base URL (for testing).
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

func (c *Client) Name() string { return "todoist" }

// ListTasks fetches the active tasks visible to the token, resolving
// project IDs to names. Tasks that fail mapping are logged and
// skipped so one malformed record cannot stall the whole cycle.
func (c *Client) ListTasks(ctx context.Context) ([]task.Task, error) {
	log := config.WithContext(ctx)

	var objs []taskObject
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &objs); err != nil {
		return nil, err
	}

	projects, err := c.listProjects(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]task.Task, 0, len(objs))
	for _, obj := range objs {
		rec, err := mapToRecord(obj, projects)
		if err != nil {
			log.WithError(err).WithField("todoist_id", obj.ID).Warn("Skipping unmappable tracker task")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// GetTask looks one task up by ID. The list endpoint returns active tasks
// only, so a completed task vanishes from it exactly like a deleted one;
// the per-ID lookup still resolves completed tasks and is how the two
// cases are told apart.
func (c *Client) GetTask(ctx context.Context, id string) (task.Task, bool, error) {
	var obj taskObject
	err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &obj)
	if errors.Is(err, errNotFound) {
		return task.Task{}, false, nil
	}
	if err != nil {
		return task.Task{}, false, err
	}

	projects, err := c.listProjects(ctx)
	if err != nil {
		return task.Task{}, false, err
	}
	rec, err := mapToRecord(obj, projects)
	if err != nil {
		return task.Task{}, false, err
	}
	return rec, true, nil
}

// CreateTask creates a counterpart task and returns its new ID. Labels
// unknown to the tracker are dropped rather than rejected.
func (c *Client) CreateTask(ctx context.Context, t *task.Task) (string, error) {
	req := mapFromRecord(t)

	if len(req.Labels) > 0 {
		known, err := c.listLabels(ctx)
		if err != nil {
			return "", err
		}
		req.Labels = filterLabels(req.Labels, known)
	}

	var created taskObject
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create returned no task id", task.ErrMalformedRecord)
	}

	// Completion cannot be set on create.
	if t.Completed {
		if err := c.do(ctx, http.MethodPost, "/tasks/"+created.ID+"/close", nil, nil); err != nil {
			return "", err
		}
	}
	return created.ID, nil
}

// UpdateTask applies the patch. Field edits go through the task update
// endpoint; completion toggles go through close/reopen.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	hasFieldEdits := patch.Title != nil || patch.Priority != nil || patch.Labels != nil || patch.Due != nil
	if hasFieldEdits {
		req := mapFromPatch(patch)
		if len(req.Labels) > 0 {
			known, err := c.listLabels(ctx)
			if err != nil {
				return err
			}
			req.Labels = filterLabels(req.Labels, known)
		}
		if err := c.do(ctx, http.MethodPost, "/tasks/"+id, req, nil); err != nil {
			return err
		}
	}

	if patch.Completed != nil {
		endpoint := "/tasks/" + id + "/reopen"
		if *patch.Completed {
			endpoint = "/tasks/" + id + "/close"
		}
		if err := c.do(ctx, http.MethodPost, endpoint, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTask removes a task. A task already gone counts as deleted.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

// LinkCounterpart is a no-op: the cross-reference is stored on the
// workspace side only.
func (c *Client) LinkCounterpart(ctx context.Context, id, counterpartID string) error {
	return nil
}

func (c *Client) listProjects(ctx context.Context) (map[string]string, error) {
	var objs []projectObject
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &objs); err != nil {
		return nil, err
	}
	projects := make(map[string]string, len(objs))
	for _, p := range objs {
		projects[p.ID] = p.Name
	}
	return projects, nil
}

func (c *Client) listLabels(ctx context.Context) (map[string]bool, error) {
	var objs []labelObject
	if err := c.do(ctx, http.MethodGet, "/labels", nil, &objs); err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(objs))
	for _, l := range objs {
		known[l.Name] = true
	}
	return known, nil
}

// filterLabels returns a new slice; the input aliases the caller's record
// and must not be mutated.
func filterLabels(labels []string, known map[string]bool) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if known[l] {
			out = append(out, l)
		}
	}
	return out
}

var errNotFound = errors.New("not found")

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode todoist request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: todoist: %v", syncer.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return err
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: todoist response: %v", task.ErrMalformedRecord, err)
	}
	return nil
}

func classifyStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: todoist token expired or invalid (HTTP %d)", syncer.ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: todoist rate limited", syncer.ErrProviderUnavailable)
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: todoist HTTP %d", syncer.ErrProviderUnavailable, resp.StatusCode)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("todoist HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
}
