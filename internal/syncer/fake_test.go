package syncer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/saulo-duarte/taskbridge/internal/task"
)

// fakeProvider is an in-memory Provider for loop and applier tests. The
// tracker fake keys tasks by TodoistID, the workspace fake by NotionPageID.
type fakeProvider struct {
	mu        sync.Mutex
	name      string
	workspace bool
	tasks     map[string]task.Task
	nextID    int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeTracker(tasks ...task.Task) *fakeProvider {
	f := &fakeProvider{name: "tracker", tasks: map[string]task.Task{}}
	for _, t := range tasks {
		f.tasks[t.TodoistID] = t
	}
	return f
}

func newFakeWorkspace(tasks ...task.Task) *fakeProvider {
	f := &fakeProvider{name: "workspace", workspace: true, tasks: map[string]task.Task{}}
	for _, t := range tasks {
		f.tasks[t.NotionPageID] = t
	}
	return f
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ListTasks(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]task.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		// The tracker's list endpoint covers active tasks only.
		if !f.workspace && t.Completed {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeProvider) GetTask(ctx context.Context, id string) (task.Task, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok, nil
}

func (f *fakeProvider) CreateTask(ctx context.Context, t *task.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.createCalls++
	f.nextID++
	id := fmt.Sprintf("%s-%d", f.name, f.nextID)

	created := *t
	if f.workspace {
		created.NotionPageID = id
	} else {
		created.TodoistID = id
	}
	f.tasks[id] = created
	return id, nil
}

func (f *fakeProvider) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("%s: update of unknown task %s", f.name, id)
	}
	f.updateCalls++
	f.tasks[id] = patch.Apply(existing)
	return nil
}

func (f *fakeProvider) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteCalls++
	delete(f.tasks, id)
	return nil
}

func (f *fakeProvider) LinkCounterpart(ctx context.Context, id, counterpartID string) error {
	if !f.workspace {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[id]
	if !ok {
		return fmt.Errorf("workspace: link on unknown page %s", id)
	}
	existing.TodoistID = counterpartID
	f.tasks[id] = existing
	return nil
}

func (f *fakeProvider) mutationCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls + f.updateCalls + f.deleteCalls
}

type fakeNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (n *fakeNotifier) Notify(ctx context.Context, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subjects)
}
