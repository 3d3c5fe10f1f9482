package task

// Patch is a partial update carrying only the fields that must change on
// the receiving provider. Nil pointer means "leave untouched".
type Patch struct {
	Title     *string
	Completed *bool
	Priority  *Priority
	Due       *DuePatch
	Project   *string
	Labels    *[]string
}

// DuePatch sets or clears the due date. A nil Value clears it.
type DuePatch struct {
	Value *Due
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil &&
		p.Completed == nil &&
		p.Priority == nil &&
		p.Due == nil &&
		p.Project == nil &&
		p.Labels == nil
}

// Apply returns a copy of t with the patch applied. Used by tests and by
// the loop when refreshing its in-memory snapshot after a successful cycle.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Due != nil {
		t.Due = p.Due.Value.Clone()
	}
	if p.Project != nil {
		t.Project = *p.Project
	}
	if p.Labels != nil {
		t.Labels = append([]string(nil), (*p.Labels)...)
	}
	return t
}
