package api

import (
	"github.com/labstack/echo/v4"

	"mindfulmate-backend/internal/auth"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api *echo.Group, h *Handlers) {
	// Public status endpoints
	api.GET("/health", h.healthCheck)
	api.GET("/llm-status", h.llmStatus)

	// Auth routes (public - no auth required for register/login)
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.registerHandler)
	authGroup.POST("/login", h.loginHandler)
	authGroup.POST("/logout", h.logoutHandler)
	authGroup.GET("/me", h.currentUserHandler, auth.RequireAuth(h.authSvc))

	// Chat works with or without an identity
	api.POST("/chat", h.chatHandler, auth.OptionalAuth(h.authSvc))

	// Journals
	api.POST("/journal", h.saveJournalHandler)
	api.GET("/journal", h.journalsByDateHandler)
	api.GET("/journal/user/:username", h.journalsByUserHandler)

	// Conversation history is identity-scoped; anonymous callers get
	// an empty list, never another identity's turns
	api.GET("/conversations", h.conversationsByDateHandler, auth.OptionalAuth(h.authSvc))
}
