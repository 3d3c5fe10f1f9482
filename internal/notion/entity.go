package notion

import "encoding/json"

// Wire shapes for the Notion API (version 2022-06-28). Properties are
// explicit structs rather than untyped maps; the mapper is the only
// translation boundary.

// Database property names the sync owns on the workspace side.
const (
	PropName         = "Name"
	PropDone         = "Done"
	PropTodoistID    = "Todoist ID"
	PropPriority     = "Priority"
	PropDueDate      = "Due Date"
	PropProject      = "Project"
	PropLabels       = "Labels"
	PropNeedSync     = "Need Sync"
	PropLastSyncTime = "Last Sync Time"
)

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []pageObject `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type pageObject struct {
	ID             string              `json:"id"`
	Archived       bool                `json:"archived"`
	LastEditedTime string              `json:"last_edited_time"`
	Properties     map[string]property `json:"properties"`
}

// property is a tagged union: exactly one value field is set, matching the
// database schema for that property name.
type property struct {
	Title       []richText     `json:"title,omitempty"`
	RichText    []richText     `json:"rich_text,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	Select      *selectOption  `json:"select,omitempty"`
	MultiSelect []selectOption `json:"multi_select,omitempty"`
	Date        *dateValue     `json:"date,omitempty"`

	// clearKey names the value field to null out on a page update. The
	// API clears a value with {"select":null}, never with an empty
	// property object, so omitempty alone cannot express a clear.
	clearKey string `json:"-"`
}

func (p property) MarshalJSON() ([]byte, error) {
	if p.clearKey != "" {
		if p.clearKey == "multi_select" {
			return []byte(`{"multi_select":[]}`), nil
		}
		return []byte(`{"` + p.clearKey + `":null}`), nil
	}
	type plain property
	return json.Marshal(plain(p))
}

func clearProperty(key string) property {
	return property{clearKey: key}
}

type richText struct {
	Text      *textContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

type textContent struct {
	Content string `json:"content"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type updatePageRequest struct {
	Properties map[string]property `json:"properties,omitempty"`
	Archived   *bool               `json:"archived,omitempty"`
}
