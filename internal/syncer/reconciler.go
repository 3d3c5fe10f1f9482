package syncer

import (
	"context"

	"github.com/saulo-duarte/taskbridge/internal/config"
	"github.com/saulo-duarte/taskbridge/internal/task"
)

// Policy holds the reconciliation knobs that are configuration choices
// rather than derived behavior.
type Policy struct {
	// TieBreak names the authoritative side when both providers edited the
	// same field group at the exact same timestamp.
	TieBreak config.TieBreak
}

// Update is one pending partial update on a provider.
type Update struct {
	ID    string
	Patch task.Patch
}

// Plan is the set of operations that converges the two providers. Creates
// carry the source side's full record; updates carry differing fields only.
type Plan struct {
	CreateOnTracker   []task.Task
	CreateOnWorkspace []task.Task
	UpdateTracker     []Update
	UpdateWorkspace   []Update
	DeleteTracker     []string
	DeleteWorkspace   []string
}

// IsEmpty reports whether the plan converged to zero operations.
func (p Plan) IsEmpty() bool {
	return len(p.CreateOnTracker) == 0 &&
		len(p.CreateOnWorkspace) == 0 &&
		len(p.UpdateTracker) == 0 &&
		len(p.UpdateWorkspace) == 0 &&
		len(p.DeleteTracker) == 0 &&
		len(p.DeleteWorkspace) == 0
}

// Reconcile compares the current observation of both providers against the
// previous snapshot and computes the operations needed to converge them.
// It is a pure function: no provider calls, no mutation of its inputs.
//
// Identity is the cross-reference only. Two tasks created independently on
// each side are never fuzzy-matched, even with identical titles; each gets
// a counterpart, yielding two pairs.
func Reconcile(ctx context.Context, obs Observation, prev *Snapshot, policy Policy) Plan {
	log := config.WithContext(ctx)

	var plan Plan

	workspaceByXref := make(map[string]task.Task, len(obs.Workspace))
	for _, w := range obs.Workspace {
		if w.TodoistID == "" {
			continue
		}
		if _, dup := workspaceByXref[w.TodoistID]; dup {
			log.WithField("todoist_id", w.TodoistID).Warn("Duplicate cross-reference on workspace, ignoring extra page")
			continue
		}
		workspaceByXref[w.TodoistID] = w
	}

	matchedPages := make(map[string]bool)
	pages := currentPages(obs)

	for _, a := range obs.Tracker {
		w, linked := workspaceByXref[a.TodoistID]
		if linked {
			matchedPages[w.NotionPageID] = true
			reconcilePair(&plan, a, w, prev, policy)
			continue
		}

		// No current counterpart. If a previous cycle had one, its page was
		// deleted by the user; otherwise the task is one-sided and pending
		// creation.
		if prevPage, deleted := deletedWorkspaceCounterpart(a.TodoistID, prev, pages); deleted {
			reconcileTrackerSurvivor(&plan, a, prevPage)
			continue
		}
		plan.CreateOnWorkspace = append(plan.CreateOnWorkspace, a)
	}

	trackerIDs := make(map[string]bool, len(obs.Tracker))
	for _, a := range obs.Tracker {
		trackerIDs[a.TodoistID] = true
	}

	for _, w := range obs.Workspace {
		if matchedPages[w.NotionPageID] {
			continue
		}

		if w.TodoistID == "" {
			plan.CreateOnTracker = append(plan.CreateOnTracker, w)
			continue
		}
		if trackerIDs[w.TodoistID] {
			// Duplicate cross-reference already warned above.
			continue
		}

		if prevTask, deleted := deletedTrackerCounterpart(w.TodoistID, prev); deleted {
			reconcileWorkspaceSurvivor(&plan, w, prevTask)
			continue
		}

		// The page references a tracker task this process never observed.
		// Without snapshot evidence there is no way to distinguish a
		// deletion from a stale reference, so nothing is propagated.
		log.WithFields(map[string]interface{}{
			"page_id":    w.NotionPageID,
			"todoist_id": w.TodoistID,
		}).Warn("Workspace page references unknown tracker task, skipping")
	}

	return plan
}

// reconcilePair handles a task present on both sides. Conflicts resolve
// per field group: completion status is one group, content (title,
// priority, due, project, labels) the other, so a completion on one side
// and a rename on the other both survive.
func reconcilePair(plan *Plan, a, w task.Task, prev *Snapshot, policy Policy) {
	changedA, changedW := sideChanges(a, w, prev)
	if !changedA.any() && !changedW.any() {
		return
	}

	trackerWins := a.LastEdited.After(w.LastEdited)
	if task.NormalizeTime(a.LastEdited).Equal(task.NormalizeTime(w.LastEdited)) {
		trackerWins = policy.TieBreak != config.TieBreakWorkspace
	}

	var trackerPatch, workspacePatch task.Patch

	resolve := func(aChanged, wChanged bool, diff func(dst *task.Patch, from, to task.Task, forWorkspace bool)) {
		switch {
		case aChanged && !wChanged:
			diff(&workspacePatch, a, w, true)
		case wChanged && !aChanged:
			diff(&trackerPatch, w, a, false)
		case aChanged && wChanged:
			if trackerWins {
				diff(&workspacePatch, a, w, true)
			} else {
				diff(&trackerPatch, w, a, false)
			}
		}
	}
	resolve(changedA.completion, changedW.completion, diffCompletion)
	resolve(changedA.content, changedW.content, diffContent)

	if !trackerPatch.IsZero() {
		plan.UpdateTracker = append(plan.UpdateTracker, Update{ID: a.TodoistID, Patch: trackerPatch})
	}
	if !workspacePatch.IsZero() {
		plan.UpdateWorkspace = append(plan.UpdateWorkspace, Update{ID: w.NotionPageID, Patch: workspacePatch})
	}
}

// reconcileTrackerSurvivor handles a tracker task whose workspace page was
// deleted. Completion wins over deletion: a completed task is never
// deleted or recreated, only kept completed.
func reconcileTrackerSurvivor(plan *Plan, a task.Task, prevPage task.Task) {
	switch {
	case a.Completed:
		// Already complete; the deletion is treated as cleanup.
	case prevPage.Completed:
		completed := true
		plan.UpdateTracker = append(plan.UpdateTracker, Update{
			ID:    a.TodoistID,
			Patch: task.Patch{Completed: &completed},
		})
	default:
		plan.DeleteTracker = append(plan.DeleteTracker, a.TodoistID)
	}
}

// reconcileWorkspaceSurvivor is the mirror case: the tracker task was
// deleted and the workspace page survives.
func reconcileWorkspaceSurvivor(plan *Plan, w task.Task, prevTask task.Task) {
	switch {
	case w.Completed:
	case prevTask.Completed:
		completed := true
		plan.UpdateWorkspace = append(plan.UpdateWorkspace, Update{
			ID:    w.NotionPageID,
			Patch: task.Patch{Completed: &completed},
		})
	default:
		plan.DeleteWorkspace = append(plan.DeleteWorkspace, w.NotionPageID)
	}
}

// changeSet records which field groups a side changed since the previous
// snapshot.
type changeSet struct {
	completion bool
	content    bool
}

func (c changeSet) any() bool { return c.completion || c.content }

// sideChanges reports which field groups each side changed since the
// previous snapshot. With no snapshot both sides count as fully changed,
// so the first cycle resolves matched pairs through last-write-wins. The
// workspace's need-sync flag marks both groups changed on that side,
// preserving the manual push behavior.
func sideChanges(a, w task.Task, prev *Snapshot) (changedA, changedW changeSet) {
	if prev == nil {
		return changeSet{true, true}, changeSet{true, true}
	}
	prevA, okA := prev.Tracker[a.TodoistID]
	prevW, okW := prev.Workspace[w.NotionPageID]

	changedA = changeSet{
		completion: !okA || a.Completed != prevA.Completed,
		content:    !okA || !contentEqual(a, prevA),
	}
	changedW = changeSet{
		completion: !okW || w.Completed != prevW.Completed || w.NeedSync,
		content:    !okW || !contentEqual(w, prevW) || w.NeedSync,
	}
	return changedA, changedW
}

// contentEqual compares the content field group, ignoring completion and
// provider bookkeeping like LastEdited (our own writes bump it).
func contentEqual(x, y task.Task) bool {
	return x.Title == y.Title &&
		x.Priority == y.Priority &&
		x.Due.Equal(y.Due) &&
		x.Project == y.Project &&
		task.SameLabels(x.Labels, y.Labels)
}

func diffCompletion(dst *task.Patch, from, to task.Task, forWorkspace bool) {
	if from.Completed != to.Completed {
		completed := from.Completed
		dst.Completed = &completed
	}
}

// diffContent adds the content fields that differ between `from` and `to`
// to the patch. The tracker does not own the project field, so project
// changes only flow toward the workspace, and due ranges pushed to the
// workspace keep their previous duration.
func diffContent(dst *task.Patch, from, to task.Task, forWorkspace bool) {
	if from.Title != to.Title {
		title := from.Title
		dst.Title = &title
	}
	if from.Priority != to.Priority {
		priority := from.Priority
		dst.Priority = &priority
	}
	if !from.Due.Equal(to.Due) {
		due := from.Due.Clone()
		if forWorkspace {
			due = task.PreserveDuration(due, to.Due)
		}
		// Duration preservation can make the dates converge, e.g. a point
		// due already covered by the workspace's range.
		if !due.Equal(to.Due) {
			dst.Due = &task.DuePatch{Value: due}
		}
	}
	if !task.SameLabels(from.Labels, to.Labels) {
		labels := append([]string(nil), from.Labels...)
		dst.Labels = &labels
	}
	if forWorkspace && from.Project != to.Project && from.Project != "" {
		project := from.Project
		dst.Project = &project
	}
}

func currentPages(obs Observation) map[string]bool {
	pages := make(map[string]bool, len(obs.Workspace))
	for _, w := range obs.Workspace {
		pages[w.NotionPageID] = true
	}
	return pages
}

// deletedWorkspaceCounterpart reports whether the previous cycle linked
// this tracker task to a workspace page that has since disappeared, and
// returns that page's last observed state. A page that merely lost its
// cross-reference still exists and is not a deletion.
func deletedWorkspaceCounterpart(todoistID string, prev *Snapshot, pages map[string]bool) (task.Task, bool) {
	if prev == nil {
		return task.Task{}, false
	}
	pageID, linked := prev.Links[todoistID]
	if !linked || pages[pageID] {
		return task.Task{}, false
	}
	prevPage, observed := prev.Workspace[pageID]
	if !observed {
		return task.Task{}, false
	}
	return prevPage, true
}

// deletedTrackerCounterpart is the mirror lookup for a workspace page
// whose tracker task has disappeared.
func deletedTrackerCounterpart(todoistID string, prev *Snapshot) (task.Task, bool) {
	if prev == nil {
		return task.Task{}, false
	}
	prevTask, observed := prev.Tracker[todoistID]
	if !observed {
		return task.Task{}, false
	}
	return prevTask, true
}
