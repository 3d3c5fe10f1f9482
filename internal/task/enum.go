package task

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority is the task priority shared by both providers. Todoist uses the
// integers 1 (normal) through 4 (urgent); the workspace renders the same
// value as a "P1".."P4" select. Zero means unset.
type Priority int

const (
	PriorityNone   Priority = 0
	PriorityNormal Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
	PriorityUrgent Priority = 4
)

// SelectName renders the priority as the workspace select option ("P3").
// Unset priorities have no select option.
func (p Priority) SelectName() string {
	if p == PriorityNone {
		return ""
	}
	return fmt.Sprintf("P%d", int(p))
}

// ParsePrioritySelect parses a workspace select option back to a Priority.
// An empty name is the unset priority; anything else must be "P1".."P4".
func ParsePrioritySelect(name string) (Priority, error) {
	if name == "" {
		return PriorityNone, nil
	}
	digits, ok := strings.CutPrefix(name, "P")
	if !ok {
		return PriorityNone, fmt.Errorf("%w: priority select %q", ErrMalformedRecord, name)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 4 {
		return PriorityNone, fmt.Errorf("%w: priority select %q", ErrMalformedRecord, name)
	}
	return Priority(n), nil
}
