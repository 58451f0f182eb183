package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/tsubakurame/team-todo-api/internal/errors"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

// NotificationHandler triggers the digest batch over HTTP. The route is
// guarded by the batch-secret middleware rather than a session.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// SendBatch runs one digest pass and reports how many users were mailed.
// Repeated calls are safe: sent notifications are never picked up again.
func (h *NotificationHandler) SendBatch(c *gin.Context) {
	result, err := h.notificationService.RunBatch(c.Request.Context(), time.Now())
	if err != nil {
		apierrors.InternalError(c, "Failed to run notification batch")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  result.Users,
		"sent":   result.Sent,
		"failed": result.Failed,
	})
}
