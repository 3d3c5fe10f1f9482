package status

import (
	"net/http"

	"github.com/saulo-duarte/taskbridge/internal/config"
	"github.com/saulo-duarte/taskbridge/internal/syncer"
)

type Handler struct {
	loop *syncer.Loop
}

func NewHandler(loop *syncer.Loop) *Handler {
	return &Handler{loop: loop}
}

type statusResponse struct {
	State     syncer.State        `json:"state"`
	Links     int                 `json:"links"`
	LastCycle *syncer.CycleReport `json:"last_cycle,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	state, report, links := h.loop.Status()
	config.JSON(w, http.StatusOK, statusResponse{
		State:     state,
		Links:     links,
		LastCycle: report,
	})
}
