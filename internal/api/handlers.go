// Package api exposes the HTTP surface: auth, chat, journals,
// conversation history, and service status.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/auth"
	"mindfulmate-backend/internal/llm"
	"mindfulmate-backend/internal/store"
)

// Handlers carries the services the HTTP layer delegates to. All state
// is injected; handlers hold no globals.
type Handlers struct {
	authSvc      *auth.Service
	orchestrator *llm.Orchestrator
	memory       store.MemoryStore
	logger       *zap.Logger
}

// NewHandlers wires the HTTP layer.
func NewHandlers(authSvc *auth.Service, orchestrator *llm.Orchestrator,
	memory store.MemoryStore, logger *zap.Logger) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		orchestrator: orchestrator,
		memory:       memory,
		logger:       logger,
	}
}

// healthCheck handles GET /api/health
func (h *Handlers) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// llmStatus handles GET /api/llm-status
func (h *Handlers) llmStatus(c echo.Context) error {
	providers := h.orchestrator.Providers()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"providers":  providers,
		"configured": len(providers) > 0,
	})
}
