package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/access"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
)

var (
	ErrMessageContentRequired = errors.New("message content is required")
)

// MessageService handles todo comments. Posting requires message access on
// the parent todo; recipients with read access are notified by email on a
// best-effort basis.
type MessageService struct {
	todoRepo repository.TodoRepository
	mail     mailer.Sender
}

// NewMessageService creates a new MessageService.
func NewMessageService(todoRepo repository.TodoRepository, mail mailer.Sender) *MessageService {
	return &MessageService{
		todoRepo: todoRepo,
		mail:     mail,
	}
}

// Post appends a message to a todo and emails the todo's other readers.
// Per-recipient delivery failures are logged and never fail the request; the
// message itself is already persisted.
func (s *MessageService) Post(ctx context.Context, author *models.User, todoID uint64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrMessageContentRequired
	}

	todo, err := s.loadForMessaging(author, todoID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		TodoID:   todo.ID,
		AuthorID: author.ID,
		Content:  content,
	}
	if err := s.todoRepo.CreateMessage(message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	subject, body := mailer.NewMessageMail(author.Email, todo.Title, content)
	for _, recipient := range s.recipients(author, todo) {
		if err := s.mail.Send(ctx, recipient, subject, body); err != nil {
			log.Printf("failed to notify %s about message on todo %d: %v", recipient, todo.ID, err)
		}
	}

	message.Author = *author
	return message, nil
}

// List returns a todo's messages for a principal with read access.
func (s *MessageService) List(requester *models.User, todoID uint64) ([]models.Message, error) {
	if _, err := s.loadForMessaging(requester, todoID); err != nil {
		return nil, err
	}

	messages, err := s.todoRepo.ListMessages(todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) loadForMessaging(user *models.User, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if !access.CanMessage(user, todo) {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

// recipients is the owner plus the share list, minus the author. Shares and
// Owner are loaded by FindByID.
func (s *MessageService) recipients(author *models.User, todo *models.Todo) []string {
	var emails []string
	if todo.OwnerID != author.ID {
		emails = append(emails, todo.Owner.Email)
	}
	for _, share := range todo.Shares {
		if share.UserID != author.ID && share.User.ID != 0 {
			emails = append(emails, share.User.Email)
		}
	}
	return emails
}
