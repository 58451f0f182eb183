package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tsubakurame/team-todo-api/internal/constants"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
)

// BatchResult is the per-run tally of the digest job.
type BatchResult struct {
	Users  int `json:"users"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// NotificationService batches pending todo notifications into one digest
// email per user. Delivery is at-least-once: a group whose send fails stays
// unsent and is retried on the next run, and overlapping runs are safe
// because already-sent rows are simply no longer selected.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	mail             mailer.Sender
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository, mail mailer.Sender) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		mail:             mail,
	}
}

// RunBatch selects notifications that have been pending for at least the
// minimum age, groups them by user, and sends one digest per user. Groups
// are independent: one failed send never blocks or rolls back the others.
func (s *NotificationService) RunBatch(ctx context.Context, now time.Time) (*BatchResult, error) {
	cutoff := now.Add(-constants.NotificationMinAge)
	pending, err := s.notificationRepo.ListPending(cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	groups := make(map[uint64][]models.TodoNotification)
	var order []uint64
	for _, n := range pending {
		if _, seen := groups[n.UserID]; !seen {
			order = append(order, n.UserID)
		}
		groups[n.UserID] = append(groups[n.UserID], n)
	}

	result := &BatchResult{Users: len(order)}
	for _, userID := range order {
		group := groups[userID]
		if err := s.sendDigest(ctx, group, now); err != nil {
			log.Printf("notification digest for user %d failed: %v", userID, err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	return result, nil
}

// sendDigest emails one user's pending notifications and marks them sent
// only after the send succeeded.
func (s *NotificationService) sendDigest(ctx context.Context, group []models.TodoNotification, now time.Time) error {
	items := make([]mailer.DigestItem, len(group))
	ids := make([]uint64, len(group))
	for i, n := range group {
		item := mailer.DigestItem{
			Title:      n.Todo.Title,
			OwnerEmail: n.Todo.Owner.Email,
			DueDate:    n.Todo.DueDate,
		}
		if n.Todo.Description != nil {
			item.Description = *n.Todo.Description
		}
		items[i] = item
		ids[i] = n.ID
	}

	subject, body := mailer.DigestMail(items)
	if err := s.mail.Send(ctx, group[0].User.Email, subject, body); err != nil {
		return err
	}

	if err := s.notificationRepo.MarkSent(ids, now); err != nil {
		return fmt.Errorf("digest sent but marking failed: %w", err)
	}
	return nil
}
