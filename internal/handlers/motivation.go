package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/tsubakurame/team-todo-api/internal/errors"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

// MotivationHandler serves the daily motivational message.
type MotivationHandler struct {
	motivationService *services.MotivationService
}

// NewMotivationHandler creates a new MotivationHandler.
func NewMotivationHandler(motivationService *services.MotivationService) *MotivationHandler {
	return &MotivationHandler{
		motivationService: motivationService,
	}
}

// MessageOfTheDay returns today's motivational message.
func (h *MotivationHandler) MessageOfTheDay(c *gin.Context) {
	msg, err := h.motivationService.MessageOfTheDay(c.Request.Context())
	if err != nil {
		apierrors.InternalError(c, "Failed to load motivational message")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  msg.Message,
		"author":   msg.Author,
		"category": msg.Category,
		"date":     msg.Date.Format("2006-01-02"),
	})
}
