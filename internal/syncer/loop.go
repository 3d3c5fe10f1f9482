package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/saulo-duarte/taskbridge/internal/alert"
	"github.com/saulo-duarte/taskbridge/internal/config"
)

// State is the loop's position in the cycle state machine.
type State string

const (
	StateIdle        State = "IDLE"
	StateFetching    State = "FETCHING"
	StateReconciling State = "RECONCILING"
	StateApplying    State = "APPLYING"
)

// CycleReport describes the most recent cycle for the status endpoint.
type CycleReport struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Stats      CycleStats `json:"stats"`
	Error      string     `json:"error,omitempty"`
}

// Loop runs the fetch → reconcile → apply cycle on a fixed interval. One
// cycle at a time: the loop blocks for the full sequence before sleeping.
// The only state carried across cycles is the in-memory snapshot, replaced
// after each fully successful apply.
type Loop struct {
	tracker   Provider
	workspace Provider
	notifier  alert.Notifier
	policy    Policy
	interval  time.Duration

	mu       sync.Mutex
	state    State
	snapshot *Snapshot
	last     *CycleReport
}

func NewLoop(tracker, workspace Provider, notifier alert.Notifier, policy Policy, interval time.Duration) *Loop {
	return &Loop{
		tracker:   tracker,
		workspace: workspace,
		notifier:  notifier,
		policy:    policy,
		interval:  interval,
		state:     StateIdle,
	}
}

// Run executes cycles until the context is cancelled, starting with an
// immediate cycle. Cycle failures are alerted and retried at the next
// tick; Run itself only returns on shutdown.
func (l *Loop) Run(ctx context.Context) {
	log := config.WithContext(ctx)
	log.WithField("interval", l.interval.String()).Info("Sync loop started")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("Sync loop stopped")
			return
		case <-ticker.C:
			l.RunCycle(ctx)
		}
	}
}

// RunCycle executes exactly one cycle. Exported so a one-shot invocation
// and tests can drive the loop without the ticker.
func (l *Loop) RunCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	ctx = config.WithCycleID(ctx, cycleID)
	log := config.WithContext(ctx)

	report := &CycleReport{ID: cycleID, StartedAt: time.Now()}

	err := l.cycle(ctx, report)
	report.FinishedAt = time.Now()
	if err != nil {
		report.Error = err.Error()
		log.WithError(err).Error("Sync cycle failed")
		l.notifier.Notify(ctx, "Task sync error",
			fmt.Sprintf("A sync cycle failed and will be retried at the next interval.\n\nCycle: %s\nError: %v", cycleID, err))
	}

	l.mu.Lock()
	l.state = StateIdle
	l.last = report
	l.mu.Unlock()
}

func (l *Loop) cycle(ctx context.Context, report *CycleReport) error {
	log := config.WithContext(ctx)

	l.setState(StateFetching)
	prev := l.currentSnapshot()
	obs, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	if err := l.resolveVanishedTracker(ctx, &obs, prev); err != nil {
		return err
	}

	l.setState(StateReconciling)
	plan := Reconcile(ctx, obs, prev, l.policy)

	l.setState(StateApplying)
	if plan.IsEmpty() {
		l.replaceSnapshot(NewSnapshot(obs))
		log.Info("Providers already converged, nothing to apply")
		return nil
	}

	stats, next, err := newApplier(l.tracker, l.workspace).Apply(ctx, obs, plan)
	report.Stats = stats
	if err != nil {
		return err
	}
	l.replaceSnapshot(next)

	log.WithFields(map[string]interface{}{
		"created_on_tracker":   stats.CreatedOnTracker,
		"created_on_workspace": stats.CreatedOnWorkspace,
		"updated_tracker":      stats.UpdatedTracker,
		"updated_workspace":    stats.UpdatedWorkspace,
		"deleted_tracker":      stats.DeletedTracker,
		"deleted_workspace":    stats.DeletedWorkspace,
		"links":                next.LinkCount(),
	}).Info("Sync cycle complete")
	return nil
}

// fetch queries both providers concurrently and joins before
// reconciliation; the two fetches have no ordering dependency.
func (l *Loop) fetch(ctx context.Context) (Observation, error) {
	var obs Observation

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := l.tracker.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("fetch from %s: %w", l.tracker.Name(), err)
		}
		obs.Tracker = tasks
		return nil
	})
	g.Go(func() error {
		tasks, err := l.workspace.ListTasks(gctx)
		if err != nil {
			return fmt.Errorf("fetch from %s: %w", l.workspace.Name(), err)
		}
		obs.Workspace = tasks
		return nil
	})

	if err := g.Wait(); err != nil {
		return Observation{}, err
	}
	return obs, nil
}

// resolveVanishedTracker re-checks tracker tasks that were in the previous
// snapshot but missing from the list fetch. The tracker lists active tasks
// only, so a task the user completed vanishes exactly like a deleted one;
// the per-ID lookup tells them apart, and a still-existing task rejoins
// the observation so its completion propagates instead of a deletion.
func (l *Loop) resolveVanishedTracker(ctx context.Context, obs *Observation, prev *Snapshot) error {
	if prev == nil {
		return nil
	}
	log := config.WithContext(ctx)

	seen := make(map[string]bool, len(obs.Tracker))
	for _, t := range obs.Tracker {
		seen[t.TodoistID] = true
	}
	for id := range prev.Tracker {
		if seen[id] {
			continue
		}
		rec, found, err := l.tracker.GetTask(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve vanished task on %s: %w", l.tracker.Name(), err)
		}
		if !found {
			continue
		}
		obs.Tracker = append(obs.Tracker, rec)
		log.WithField("todoist_id", id).Debug("Vanished tracker task still exists, kept in observation")
	}
	return nil
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) currentSnapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot
}

func (l *Loop) replaceSnapshot(s *Snapshot) {
	l.mu.Lock()
	l.snapshot = s
	l.mu.Unlock()
}

// Status reports the loop state for the status endpoint.
func (l *Loop) Status() (State, *CycleReport, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var report *CycleReport
	if l.last != nil {
		copied := *l.last
		report = &copied
	}
	return l.state, report, l.snapshot.LinkCount()
}

// Snapshot returns the snapshot the next cycle will compare against.
// Exposed for tests.
func (l *Loop) Snapshot() *Snapshot {
	return l.currentSnapshot()
}
