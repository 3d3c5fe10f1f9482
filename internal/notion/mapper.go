package notion

import (
	"fmt"
	"strings"
	"time"

	"github.com/saulo-duarte/taskbridge/internal/task"
	util "github.com/saulo-duarte/taskbridge/internal/utils"
)

// mapToRecord translates one database page into the shared record. The
// mapper owns title, completion, priority, due, project, labels, the
// cross-reference, and the need-sync flag.
func mapToRecord(page pageObject) (task.Task, error) {
	if page.ID == "" {
		return task.Task{}, fmt.Errorf("%w: page without id", task.ErrMalformedRecord)
	}

	rec := task.Task{NotionPageID: page.ID}

	rec.Title = plainText(page.Properties[PropName].Title)
	rec.TodoistID = plainText(page.Properties[PropTodoistID].RichText)

	if cb := page.Properties[PropDone].Checkbox; cb != nil {
		rec.Completed = *cb
	}
	if cb := page.Properties[PropNeedSync].Checkbox; cb != nil {
		rec.NeedSync = *cb
	}
	if sel := page.Properties[PropProject].Select; sel != nil {
		rec.Project = sel.Name
	}

	priority, err := task.ParsePrioritySelect(selectName(page.Properties[PropPriority].Select))
	if err != nil {
		return task.Task{}, fmt.Errorf("page %s: %w", page.ID, err)
	}
	rec.Priority = priority

	for _, opt := range page.Properties[PropLabels].MultiSelect {
		rec.Labels = append(rec.Labels, opt.Name)
	}

	if date := page.Properties[PropDueDate].Date; date != nil {
		due, err := mapDate(*date)
		if err != nil {
			return task.Task{}, fmt.Errorf("%w: page %s: %v", task.ErrMalformedRecord, page.ID, err)
		}
		rec.Due = due
	}

	if page.LastEditedTime != "" {
		edited, _, err := util.ParseISO(page.LastEditedTime)
		if err != nil {
			return task.Task{}, fmt.Errorf("%w: page %s: %v", task.ErrMalformedRecord, page.ID, err)
		}
		rec.LastEdited = edited
	}

	return rec, nil
}

func mapDate(date dateValue) (*task.Due, error) {
	start, dateOnly, err := util.ParseISO(date.Start)
	if err != nil {
		return nil, err
	}
	due := &task.Due{Start: start, DateOnly: dateOnly}
	if date.End != "" {
		end, _, err := util.ParseISO(date.End)
		if err != nil {
			return nil, err
		}
		due.End = &end
	}
	return due, nil
}

// mapFromRecord builds the full property set for a page create, including
// the cross-reference and the sync stamp.
func mapFromRecord(rec *task.Task, now time.Time) map[string]property {
	props := map[string]property{
		PropName: {Title: []richText{text(rec.Title)}},
		PropDone: {Checkbox: boolPtr(rec.Completed)},
	}
	if rec.TodoistID != "" {
		props[PropTodoistID] = property{RichText: []richText{text(rec.TodoistID)}}
	}
	if name := rec.Priority.SelectName(); name != "" {
		props[PropPriority] = property{Select: &selectOption{Name: name}}
	}
	if rec.Project != "" {
		props[PropProject] = property{Select: &selectOption{Name: rec.Project}}
	}
	if len(rec.Labels) > 0 {
		props[PropLabels] = property{MultiSelect: options(rec.Labels)}
	}
	if date := dateFromDue(rec.Due); date != nil {
		props[PropDueDate] = property{Date: date}
	}
	props[PropLastSyncTime] = property{Date: &dateValue{Start: util.FormatISO(now, false)}}
	return props
}

// mapFromPatch builds the property set for a page update, carrying only
// the changed fields plus the sync stamp.
func mapFromPatch(patch task.Patch, now time.Time) map[string]property {
	props := map[string]property{}
	if patch.Title != nil {
		props[PropName] = property{Title: []richText{text(*patch.Title)}}
	}
	if patch.Completed != nil {
		props[PropDone] = property{Checkbox: boolPtr(*patch.Completed)}
	}
	if patch.Priority != nil {
		if name := patch.Priority.SelectName(); name != "" {
			props[PropPriority] = property{Select: &selectOption{Name: name}}
		} else {
			props[PropPriority] = clearProperty("select")
		}
	}
	if patch.Project != nil {
		if *patch.Project != "" {
			props[PropProject] = property{Select: &selectOption{Name: *patch.Project}}
		} else {
			props[PropProject] = clearProperty("select")
		}
	}
	if patch.Labels != nil {
		if len(*patch.Labels) > 0 {
			props[PropLabels] = property{MultiSelect: options(*patch.Labels)}
		} else {
			props[PropLabels] = clearProperty("multi_select")
		}
	}
	if patch.Due != nil {
		if patch.Due.Value != nil {
			props[PropDueDate] = property{Date: dateFromDue(patch.Due.Value)}
		} else {
			props[PropDueDate] = clearProperty("date")
		}
	}
	props[PropLastSyncTime] = property{Date: &dateValue{Start: util.FormatISO(now, false)}}
	return props
}

func dateFromDue(due *task.Due) *dateValue {
	if due == nil {
		return nil
	}
	date := &dateValue{Start: util.FormatISO(due.Start, due.DateOnly)}
	if due.End != nil {
		date.End = util.FormatISO(*due.End, due.DateOnly)
	}
	return date
}

func plainText(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		if part.Text != nil {
			b.WriteString(part.Text.Content)
		} else {
			b.WriteString(part.PlainText)
		}
	}
	return b.String()
}

func selectName(sel *selectOption) string {
	if sel == nil {
		return ""
	}
	return sel.Name
}

func text(s string) richText {
	return richText{Text: &textContent{Content: s}}
}

func options(names []string) []selectOption {
	out := make([]selectOption, 0, len(names))
	for _, name := range names {
		out = append(out, selectOption{Name: name})
	}
	return out
}

func boolPtr(v bool) *bool { return &v }
