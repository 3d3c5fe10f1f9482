package syncer

import (
	"context"
	"errors"

	"github.com/saulo-duarte/taskbridge/internal/task"
)

// ErrProviderUnavailable covers network failures, expired or invalid
// tokens, and rate limiting. The distinction does not matter to the loop:
// the cycle aborts and retries at the next interval either way.
var ErrProviderUnavailable = errors.New("provider unavailable")

// Provider is one side of the sync: the tracker (Todoist) or the
// workspace (Notion database). All calls are synchronous; clients apply
// their own per-call timeouts.
type Provider interface {
	// Name identifies the provider in logs and alerts.
	Name() string

	// ListTasks returns the provider's current tasks mapped to the shared
	// record. Records that fail mapping are logged and skipped, not
	// returned as errors. The tracker's listing covers active tasks only;
	// completed tasks drop out of it.
	ListTasks(ctx context.Context) ([]task.Task, error)

	// GetTask looks a single task up by ID, reporting whether it still
	// exists. This is how a completed tracker task is told apart from a
	// deleted one after it vanishes from the listing.
	GetTask(ctx context.Context, id string) (task.Task, bool, error)

	// CreateTask creates a counterpart for t and returns its new
	// provider-side ID.
	CreateTask(ctx context.Context, t *task.Task) (string, error)

	// UpdateTask applies the differing fields to an existing task.
	UpdateTask(ctx context.Context, id string, patch task.Patch) error

	// DeleteTask removes a task. Deleting an already-absent task is not
	// an error.
	DeleteTask(ctx context.Context, id string) error

	// LinkCounterpart stores the counterpart's ID on the given task. The
	// cross-reference lives only on the workspace side; the tracker
	// implementation is a no-op.
	LinkCounterpart(ctx context.Context, id, counterpartID string) error
}
