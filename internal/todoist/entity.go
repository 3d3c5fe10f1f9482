package todoist

// Wire shapes for the Todoist REST v2 API. Only the fields the sync owns
// or reads are declared; everything else in the vendor payload is ignored.

type taskObject struct {
	ID          string     `json:"id"`
	Content     string     `json:"content"`
	ProjectID   string     `json:"project_id"`
	IsCompleted bool       `json:"is_completed"`
	Priority    int        `json:"priority"`
	Labels      []string   `json:"labels"`
	Due         *dueObject `json:"due"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// dueObject is the task due date. Exactly one of Date (all-day) or
// Datetime is set on the wire.
type dueObject struct {
	Date     string `json:"date,omitempty"`
	Datetime string `json:"datetime,omitempty"`
}

type projectObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type labelObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// taskRequest is the create/update payload. Completion is never set here;
// it goes through the close/reopen endpoints.
type taskRequest struct {
	Content     string   `json:"content,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	DueDatetime string   `json:"due_datetime,omitempty"`
	DueString   string   `json:"due_string,omitempty"`
}
