package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tsubakurame/team-todo-api/internal/dto"
	apierrors "github.com/tsubakurame/team-todo-api/internal/errors"
	"github.com/tsubakurame/team-todo-api/internal/middleware"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

// MessageHandler exposes todo messages over HTTP.
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// PostMessage appends a message to a todo the current user can read.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type PostMessageRequest struct {
		TodoID  uint64 `json:"todo_id" binding:"required"`
		Content string `json:"content" binding:"required"`
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	message, err := h.messageService.Post(c.Request.Context(), user, req.TodoID, req.Content)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageDTO(*message))
}

// ListMessages returns a todo's messages, oldest first.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := h.messageService.List(user, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	messageDTOs := make([]dto.MessageDTO, 0, len(messages))
	for _, message := range messages {
		messageDTOs = append(messageDTOs, dto.ToMessageDTO(message))
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messageDTOs,
	})
}
