package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/DrewDeMo/finance/internal/auth"
)

const (
	// UserIDKey is the request-context key for the authenticated user ID.
	UserIDKey = "user_id"
	// EmailKey is the request-context key for the authenticated user's email.
	EmailKey = "email"
)

// GetUserID extracts the authenticated user ID from the request context.
// Returns empty string if not present.
func GetUserID(c echo.Context) string {
	userID, _ := c.Get(UserIDKey).(string)
	return userID
}

// GetEmail extracts the authenticated user's email from the request context.
// Returns empty string if not present.
func GetEmail(c echo.Context) string {
	email, _ := c.Get(EmailKey).(string)
	return email
}

// RequireAuth returns a middleware that validates JWT bearer tokens and
// rejects unauthenticated requests. On success it stores the user ID and
// email in the request context.
//
// An expired session responds with error code "session_expired" so the
// client knows to attempt its single refresh before giving up.
func RequireAuth(jwtManager *auth.JWTManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrSessionExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "session_expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(EmailKey, claims.Email)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}
