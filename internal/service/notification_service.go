package service

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DrewDeMo/finance/internal/middleware"
	"github.com/DrewDeMo/finance/internal/notify"
)

// NotificationService serves the transient in-memory notification feed.
// Nothing here is persisted: restarting the server empties every feed.
type NotificationService struct {
	feed *notify.Feed
}

// NewNotificationService creates a notification service over the given feed.
func NewNotificationService(feed *notify.Feed) *NotificationService {
	return &NotificationService{feed: feed}
}

// Register mounts the notification routes. Requires a session.
func (s *NotificationService) Register(e *echo.Echo, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/api/notifications", requireAuth)
	g.GET("", s.handleList)
	g.DELETE("/:id", s.handleDismiss)
}

type notificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	CreatedAt string `json:"created_at"`
}

func (s *NotificationService) handleList(c echo.Context) error {
	userID := middleware.GetUserID(c)

	entries := s.feed.List(userID)
	resp := make([]notificationResponse, len(entries))
	for i, n := range entries {
		resp[i] = notificationResponse{
			ID:        n.ID,
			Message:   n.Message,
			Severity:  string(n.Severity),
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *NotificationService) handleDismiss(c echo.Context) error {
	s.feed.Dismiss(middleware.GetUserID(c), c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
