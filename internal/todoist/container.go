package todoist

import (
	"github.com/saulo-duarte/taskbridge/internal/config"
)

type TodoistContainer struct {
	Client *Client
}

func NewTodoistContainer(cfg *config.Config) *TodoistContainer {
	return &TodoistContainer{
		Client: NewClient(cfg.TodoistAPIKey),
	}
}
