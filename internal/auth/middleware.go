package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mindfulmate-backend/internal/models"
)

// ContextKeyUser is the echo context key holding the authenticated user.
const ContextKeyUser = "user"

// RequireAuth middleware rejects requests without a valid session.
func RequireAuth(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromRequest(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}

			user, err := svc.Validate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid or expired session",
				})
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}

// OptionalAuth middleware resolves the identity when a valid token is
// present and continues anonymously otherwise. Chat and conversation
// lookups use this: an absent identity is a valid state, not an error.
func OptionalAuth(svc *Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := TokenFromRequest(c); token != "" {
				if user, err := svc.Validate(c.Request().Context(), token); err == nil {
					c.Set(ContextKeyUser, user)
				}
			}
			return next(c)
		}
	}
}

// TokenFromRequest extracts the session token from the request.
func TokenFromRequest(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := c.Cookie("session_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// UserFromContext retrieves the authenticated user, or nil when anonymous.
func UserFromContext(c echo.Context) *models.UserInfo {
	user, ok := c.Get(ContextKeyUser).(*models.UserInfo)
	if !ok {
		return nil
	}
	return user
}
