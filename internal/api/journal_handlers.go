package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/models"
)

// saveJournalHandler handles POST /api/journal
func (h *Handlers) saveJournalHandler(c echo.Context) error {
	var req models.JournalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Title == "" || req.Entry == "" || req.Username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "title, entry and username are required",
		})
	}

	entry := &models.JournalEntry{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Entry:     req.Entry,
		Username:  req.Username,
		Timestamp: time.Now().UTC(),
	}

	if err := h.memory.SaveJournal(c.Request().Context(), entry); err != nil {
		h.logger.Error("journal save failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to save journal entry",
		})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"id": entry.ID,
	})
}

// journalsByUserHandler handles GET /api/journal/user/:username
func (h *Handlers) journalsByUserHandler(c echo.Context) error {
	username := c.Param("username")

	entries, err := h.memory.JournalsByUser(c.Request().Context(), username)
	if err != nil {
		h.logger.Error("journal lookup failed", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}

	return c.JSON(http.StatusOK, entries)
}

// journalsByDateHandler handles GET /api/journal?date=YYYY-MM-DD
func (h *Handlers) journalsByDateHandler(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "date query parameter is required",
		})
	}

	entries, err := h.memory.JournalsByDate(c.Request().Context(), date)
	if err != nil {
		h.logger.Error("journal lookup failed", zap.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}

	return c.JSON(http.StatusOK, entries)
}
