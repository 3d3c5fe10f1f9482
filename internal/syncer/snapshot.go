package syncer

import (
	"github.com/saulo-duarte/taskbridge/internal/task"
)

// Observation is one cycle's view of both providers, fetched before
// reconciliation.
type Observation struct {
	Tracker   []task.Task
	Workspace []task.Task
}

// Snapshot is the previous cycle's observation plus the cross-reference
// table, held in memory by the loop. It is the only state carried between
// cycles; provider state remains the source of truth. Nil on the first
// cycle, so no deletions can be inferred then.
type Snapshot struct {
	// Tracker tasks by Todoist ID.
	Tracker map[string]task.Task
	// Workspace tasks by Notion page ID.
	Workspace map[string]task.Task
	// Links maps Todoist ID to Notion page ID.
	Links map[string]string
}

// NewSnapshot indexes an observation. Workspace pages without a
// cross-reference still appear in Workspace but not in Links.
func NewSnapshot(obs Observation) *Snapshot {
	snap := &Snapshot{
		Tracker:   make(map[string]task.Task, len(obs.Tracker)),
		Workspace: make(map[string]task.Task, len(obs.Workspace)),
		Links:     make(map[string]string),
	}
	for _, t := range obs.Tracker {
		snap.Tracker[t.TodoistID] = t
	}
	for _, t := range obs.Workspace {
		snap.Workspace[t.NotionPageID] = t
		if t.TodoistID != "" {
			if _, dup := snap.Links[t.TodoistID]; !dup {
				snap.Links[t.TodoistID] = t.NotionPageID
			}
		}
	}
	return snap
}

// LinkCount returns the number of cross-reference pairs.
func (s *Snapshot) LinkCount() int {
	if s == nil {
		return 0
	}
	return len(s.Links)
}
