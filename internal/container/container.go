package container

import (
	"github.com/saulo-duarte/taskbridge/internal/alert"
	"github.com/saulo-duarte/taskbridge/internal/config"
	"github.com/saulo-duarte/taskbridge/internal/notion"
	"github.com/saulo-duarte/taskbridge/internal/status"
	"github.com/saulo-duarte/taskbridge/internal/syncer"
	"github.com/saulo-duarte/taskbridge/internal/todoist"
)

type Container struct {
	Config           *config.Config
	TodoistContainer *todoist.TodoistContainer
	NotionContainer  *notion.NotionContainer
	SyncerContainer  *syncer.SyncerContainer
	StatusHandler    *status.Handler
	Notifier         alert.Notifier
}

func New(cfg *config.Config) *Container {
	config.InitLogger(cfg.LogLevel)

	todoistContainer := todoist.NewTodoistContainer(cfg)
	notionContainer := notion.NewNotionContainer(cfg)
	notifier := alert.NewNotifier(cfg.Email)

	syncerContainer := syncer.NewSyncerContainer(
		cfg,
		todoistContainer.Client,
		notionContainer.Client,
		notifier,
	)

	return &Container{
		Config:           cfg,
		TodoistContainer: todoistContainer,
		NotionContainer:  notionContainer,
		SyncerContainer:  syncerContainer,
		StatusHandler:    status.NewHandler(syncerContainer.Loop),
		Notifier:         notifier,
	}
}
