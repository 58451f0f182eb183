package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/tsubakurame/team-todo-api/internal/services"
)

// Handler dispatches asynq tasks to the services that do the work.
type Handler struct {
	notificationService *services.NotificationService
}

func NewHandler(notificationService *services.NotificationService) *Handler {
	return &Handler{
		notificationService: notificationService,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNotifyDigest, h.HandleNotifyDigest)
}

// HandleNotifyDigest runs one notification digest pass. The batch only picks
// up unsent rows, so retries and overlapping runs never double-send.
func (h *Handler) HandleNotifyDigest(ctx context.Context, t *asynq.Task) error {
	var payload NotifyDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	now := payload.Now
	if now.IsZero() {
		now = time.Now()
	}

	result, err := h.notificationService.RunBatch(ctx, now)
	if err != nil {
		log.Printf("notification digest failed: %v", err)
		return err
	}

	log.Printf("notification digest: %d users, %d sent, %d failed",
		result.Users, result.Sent, result.Failed)
	return nil
}
