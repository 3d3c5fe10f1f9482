package todoist

import (
	"fmt"

	"github.com/saulo-duarte/taskbridge/internal/task"
	util "github.com/saulo-duarte/taskbridge/internal/utils"
)

// UnknownProject is reported when a task references a project the project
// listing does not contain.
const UnknownProject = "Unknown Project"

// clearDue is the magic due_string that removes a task's due date.
const clearDue = "no date"

// mapToRecord translates one vendor task into the shared record. The
// mapper owns title, completion, priority, due, and labels; the project
// name is derived read-only from the project listing.
func mapToRecord(obj taskObject, projects map[string]string) (task.Task, error) {
	if obj.ID == "" {
		return task.Task{}, fmt.Errorf("%w: task without id", task.ErrMalformedRecord)
	}

	rec := task.Task{
		TodoistID: obj.ID,
		Title:     obj.Content,
		Completed: obj.IsCompleted,
		Priority:  task.Priority(obj.Priority),
		Labels:    append([]string(nil), obj.Labels...),
	}

	if obj.Priority < 0 || obj.Priority > 4 {
		return task.Task{}, fmt.Errorf("%w: task %s priority %d", task.ErrMalformedRecord, obj.ID, obj.Priority)
	}

	if name, ok := projects[obj.ProjectID]; ok {
		rec.Project = name
	} else if obj.ProjectID != "" {
		rec.Project = UnknownProject
	}

	if obj.Due != nil {
		due, err := mapDue(*obj.Due)
		if err != nil {
			return task.Task{}, fmt.Errorf("%w: task %s: %v", task.ErrMalformedRecord, obj.ID, err)
		}
		rec.Due = due
	}

	edited := obj.UpdatedAt
	if edited == "" {
		edited = obj.CreatedAt
	}
	if edited != "" {
		t, _, err := util.ParseISO(edited)
		if err != nil {
			return task.Task{}, fmt.Errorf("%w: task %s: %v", task.ErrMalformedRecord, obj.ID, err)
		}
		rec.LastEdited = t
	}

	return rec, nil
}

func mapDue(obj dueObject) (*task.Due, error) {
	switch {
	case obj.Datetime != "":
		start, _, err := util.ParseISO(obj.Datetime)
		if err != nil {
			return nil, err
		}
		return &task.Due{Start: start}, nil
	case obj.Date != "":
		start, _, err := util.ParseISO(obj.Date)
		if err != nil {
			return nil, err
		}
		return &task.Due{Start: start, DateOnly: true}, nil
	default:
		return nil, nil
	}
}

// mapFromRecord builds a create payload from the shared record.
func mapFromRecord(rec *task.Task) taskRequest {
	req := taskRequest{
		Content:  rec.Title,
		Priority: int(rec.Priority),
		Labels:   rec.Labels,
	}
	fillDue(&req, rec.Due)
	return req
}

// mapFromPatch builds an update payload carrying only the changed fields.
// Completion changes are excluded; the client routes those to close/reopen.
func mapFromPatch(patch task.Patch) taskRequest {
	var req taskRequest
	if patch.Title != nil {
		req.Content = *patch.Title
	}
	if patch.Priority != nil {
		req.Priority = int(*patch.Priority)
	}
	if patch.Labels != nil {
		req.Labels = *patch.Labels
	}
	if patch.Due != nil {
		if patch.Due.Value == nil {
			req.DueString = clearDue
		} else {
			fillDue(&req, patch.Due.Value)
		}
	}
	return req
}

func fillDue(req *taskRequest, due *task.Due) {
	if due == nil {
		return
	}
	if due.DateOnly {
		req.DueDate = util.FormatISO(due.Start, true)
	} else {
		req.DueDatetime = util.FormatISO(due.Start, false)
	}
}
