package handlers

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hongminglow/bank-be/internal/http/respond"
)

// HealthHandler reports uptime and whether bootstrap has completed.
type HealthHandler struct {
	startedAt time.Time
	ready     atomic.Bool
}

// NewHealthHandler creates a health endpoint handler that reports "starting"
// until MarkReady is called.
func NewHealthHandler(startedAt time.Time) *HealthHandler {
	return &HealthHandler{startedAt: startedAt}
}

// MarkReady flips the endpoint to report "ok".
func (h *HealthHandler) MarkReady() {
	h.ready.Store(true)
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, _ *http.Request) {
	status, code := "ok", http.StatusOK
	if !h.ready.Load() {
		status, code = "starting", http.StatusServiceUnavailable
	}
	respond.JSON(w, code, status, map[string]string{
		"status": status,
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
