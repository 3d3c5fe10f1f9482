package syncer

import (
	"github.com/saulo-duarte/taskbridge/internal/alert"
	"github.com/saulo-duarte/taskbridge/internal/config"
)

type SyncerContainer struct {
	Loop *Loop
}

func NewSyncerContainer(cfg *config.Config, tracker, workspace Provider, notifier alert.Notifier) *SyncerContainer {
	policy := Policy{TieBreak: cfg.TieBreak}
	return &SyncerContainer{
		Loop: NewLoop(tracker, workspace, notifier, policy, cfg.SyncInterval),
	}
}
