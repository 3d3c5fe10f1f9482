package task

import (
	"errors"
	"time"
)

// ErrMalformedRecord reports a vendor payload whose shape the mapper does
// not recognize. The task carrying it is skipped; the cycle continues.
var ErrMalformedRecord = errors.New("malformed provider record")

// Task is the shared in-memory representation of one logical task as seen
// on either provider. Identity across providers is the cross-reference:
// the Todoist ID stored on the Notion page.
type Task struct {
	TodoistID    string
	NotionPageID string

	Title     string
	Completed bool
	Priority  Priority
	Due       *Due
	Project   string
	Labels    []string

	// NeedSync mirrors the workspace-side "Need Sync" checkbox. The tracker
	// has no equivalent; mappers on that side leave it false.
	NeedSync bool

	// LastEdited is the provider-reported last-modified timestamp, used by
	// the reconciler for last-write-wins decisions.
	LastEdited time.Time
}

// Due is a task due date, optionally a datetime range.
type Due struct {
	Start time.Time
	End   *time.Time
	// DateOnly marks an all-day due date with no time component.
	DateOnly bool
}

// Equal compares two due dates at one-second precision in UTC. Provider
// payloads disagree on offsets and sub-second digits for the same instant.
func (d *Due) Equal(other *Due) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.DateOnly != other.DateOnly {
		return false
	}
	if !NormalizeTime(d.Start).Equal(NormalizeTime(other.Start)) {
		return false
	}
	if (d.End == nil) != (other.End == nil) {
		return false
	}
	if d.End != nil && !NormalizeTime(*d.End).Equal(NormalizeTime(*other.End)) {
		return false
	}
	return true
}

// Clone returns a deep copy of the due date.
func (d *Due) Clone() *Due {
	if d == nil {
		return nil
	}
	out := *d
	if d.End != nil {
		end := *d.End
		out.End = &end
	}
	return &out
}

// PreserveDuration carries the previous due range's length over to a new
// start: when the tracker moves a start and the workspace date had an end,
// the end shifts with the start instead of being dropped.
func PreserveDuration(next, prev *Due) *Due {
	if next == nil || prev == nil || prev.End == nil || next.End != nil || next.DateOnly {
		return next.Clone()
	}
	out := next.Clone()
	end := next.Start.Add(prev.End.Sub(prev.Start))
	out.End = &end
	return out
}

// NormalizeTime truncates to whole seconds in UTC for cross-provider
// comparison.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// SameLabels compares label sets ignoring order.
func SameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, l := range a {
		seen[l]++
	}
	for _, l := range b {
		seen[l]--
		if seen[l] < 0 {
			return false
		}
	}
	return true
}
