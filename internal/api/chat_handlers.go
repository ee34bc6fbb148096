package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/auth"
	"mindfulmate-backend/internal/models"
)

// chatHandler handles POST /api/chat. An empty prompt is the only hard
// failure; provider trouble always resolves to a usable reply.
func (h *Handlers) chatHandler(c echo.Context) error {
	var req models.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if strings.TrimSpace(req.Prompt) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "prompt is required",
		})
	}

	username := ""
	if user := auth.UserFromContext(c); user != nil {
		username = user.Username
	}

	reply, err := h.orchestrator.Respond(c.Request().Context(), req.Prompt, req.Mood, username)
	if err != nil {
		// Respond absorbs provider failures; anything else is unexpected.
		h.logger.Error("chat failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "chat failed",
		})
	}

	return c.JSON(http.StatusOK, reply)
}

// conversationsByDateHandler handles GET /api/conversations?date=YYYY-MM-DD.
// Without a resolved identity the list is always empty.
func (h *Handlers) conversationsByDateHandler(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "date query parameter is required",
		})
	}

	username := ""
	if user := auth.UserFromContext(c); user != nil {
		username = user.Username
	}

	turns, err := h.memory.TurnsByDate(c.Request().Context(), date, username)
	if err != nil {
		h.logger.Error("conversation lookup failed", zap.Error(err))
		turns = nil
	}
	if turns == nil {
		turns = []models.ConversationTurn{}
	}

	return c.JSON(http.StatusOK, turns)
}
