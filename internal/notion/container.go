package notion

import (
	"github.com/saulo-duarte/taskbridge/internal/config"
)

type NotionContainer struct {
	Client *Client
}

func NewNotionContainer(cfg *config.Config) *NotionContainer {
	return &NotionContainer{
		Client: NewClient(cfg.NotionToken, cfg.NotionDatabaseID),
	}
}
