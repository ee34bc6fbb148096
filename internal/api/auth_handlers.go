package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"mindfulmate-backend/internal/auth"
	"mindfulmate-backend/internal/models"
)

// registerHandler handles POST /api/auth/register
func (h *Handlers) registerHandler(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "username, email and password are required",
		})
	}

	err := h.authSvc.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "username already exists",
			})
		case errors.Is(err, auth.ErrDuplicateEmail):
			return c.JSON(http.StatusConflict, map[string]string{
				"error": "email already exists",
			})
		default:
			h.logger.Error("registration failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "registration failed",
			})
		}
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "user registered successfully",
	})
}

// loginHandler handles POST /api/auth/login
func (h *Handlers) loginHandler(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "username and password are required",
		})
	}

	result, err := h.authSvc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid username or password",
			})
		}
		h.logger.Error("login failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "authentication failed",
		})
	}

	// Set token in cookie (HttpOnly for security)
	c.SetCookie(&http.Cookie{
		Name:     "session_token",
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, result)
}

// logoutHandler handles POST /api/auth/logout
func (h *Handlers) logoutHandler(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "no session token",
		})
	}

	if err := h.authSvc.Logout(c.Request().Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidSession) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "invalid session",
			})
		}
		h.logger.Error("logout failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "logout failed",
		})
	}

	// Clear the cookie
	c.SetCookie(&http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// currentUserHandler handles GET /api/auth/me
func (h *Handlers) currentUserHandler(c echo.Context) error {
	user := auth.UserFromContext(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "authentication required",
		})
	}
	return c.JSON(http.StatusOK, user)
}
