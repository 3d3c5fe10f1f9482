package syncer

import (
	"context"
	"fmt"

	"github.com/saulo-duarte/taskbridge/internal/config"
)

// CycleStats counts the operations applied during one cycle.
type CycleStats struct {
	CreatedOnTracker   int `json:"created_on_tracker"`
	CreatedOnWorkspace int `json:"created_on_workspace"`
	UpdatedTracker     int `json:"updated_tracker"`
	UpdatedWorkspace   int `json:"updated_workspace"`
	DeletedTracker     int `json:"deleted_tracker"`
	DeletedWorkspace   int `json:"deleted_workspace"`
}

type applier struct {
	tracker   Provider
	workspace Provider
}

func newApplier(tracker, workspace Provider) *applier {
	return &applier{tracker: tracker, workspace: workspace}
}

// Apply executes the plan against both providers and returns the snapshot
// the next cycle should compare against. Any provider error aborts the
// cycle; no rollback is attempted because the operations are idempotent at
// the provider level, and the partially applied work simply converges on
// the next cycle.
func (ap *applier) Apply(ctx context.Context, obs Observation, plan Plan) (CycleStats, *Snapshot, error) {
	log := config.WithContext(ctx)

	var stats CycleStats
	next := NewSnapshot(obs)

	for _, t := range plan.CreateOnWorkspace {
		pageID, err := ap.workspace.CreateTask(ctx, &t)
		if err != nil {
			return stats, nil, fmt.Errorf("create on %s: %w", ap.workspace.Name(), err)
		}
		t.NotionPageID = pageID
		next.Workspace[pageID] = t
		next.Links[t.TodoistID] = pageID
		stats.CreatedOnWorkspace++
		log.WithFields(map[string]interface{}{
			"todoist_id": t.TodoistID,
			"page_id":    pageID,
		}).Info("Created workspace counterpart")
	}

	for _, t := range plan.CreateOnTracker {
		id, err := ap.tracker.CreateTask(ctx, &t)
		if err != nil {
			return stats, nil, fmt.Errorf("create on %s: %w", ap.tracker.Name(), err)
		}
		if err := ap.workspace.LinkCounterpart(ctx, t.NotionPageID, id); err != nil {
			return stats, nil, fmt.Errorf("link counterpart on %s: %w", ap.workspace.Name(), err)
		}
		t.TodoistID = id
		next.Tracker[id] = t
		page := next.Workspace[t.NotionPageID]
		page.TodoistID = id
		next.Workspace[t.NotionPageID] = page
		next.Links[id] = t.NotionPageID
		stats.CreatedOnTracker++
		log.WithFields(map[string]interface{}{
			"todoist_id": id,
			"page_id":    t.NotionPageID,
		}).Info("Created tracker counterpart")
	}

	for _, u := range plan.UpdateWorkspace {
		if err := ap.workspace.UpdateTask(ctx, u.ID, u.Patch); err != nil {
			return stats, nil, fmt.Errorf("update on %s: %w", ap.workspace.Name(), err)
		}
		next.Workspace[u.ID] = u.Patch.Apply(next.Workspace[u.ID])
		stats.UpdatedWorkspace++
		log.WithField("page_id", u.ID).Info("Updated workspace task")
	}

	for _, u := range plan.UpdateTracker {
		if err := ap.tracker.UpdateTask(ctx, u.ID, u.Patch); err != nil {
			return stats, nil, fmt.Errorf("update on %s: %w", ap.tracker.Name(), err)
		}
		next.Tracker[u.ID] = u.Patch.Apply(next.Tracker[u.ID])
		stats.UpdatedTracker++
		log.WithField("todoist_id", u.ID).Info("Updated tracker task")
	}

	for _, id := range plan.DeleteTracker {
		if err := ap.tracker.DeleteTask(ctx, id); err != nil {
			return stats, nil, fmt.Errorf("delete on %s: %w", ap.tracker.Name(), err)
		}
		delete(next.Tracker, id)
		delete(next.Links, id)
		stats.DeletedTracker++
		log.WithField("todoist_id", id).Info("Deleted tracker task")
	}

	for _, id := range plan.DeleteWorkspace {
		if err := ap.workspace.DeleteTask(ctx, id); err != nil {
			return stats, nil, fmt.Errorf("delete on %s: %w", ap.workspace.Name(), err)
		}
		if page, ok := next.Workspace[id]; ok && page.TodoistID != "" {
			delete(next.Links, page.TodoistID)
		}
		delete(next.Workspace, id)
		stats.DeletedWorkspace++
		log.WithField("page_id", id).Info("Deleted workspace task")
	}

	return stats, next, nil
}
