package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/access"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
)

var (
	ErrTodoNotFound      = errors.New("todo not found")
	ErrNotTodoOwner      = errors.New("only the owner can modify this todo")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
	ErrInvalidStatus     = errors.New("status must be OPEN or COMPLETED")
	ErrInvalidPriority   = errors.New("priority must be LOW, MEDIUM, or HIGH")
	ErrInvalidVisibility = errors.New("visibility must be PRIVATE, ORG, or SPECIFIC")
	ErrInvalidShareUser  = errors.New("one or more shared users do not exist")
)

// TodoService handles todo business logic. All reads and writes pass through
// the access predicates; handlers never check visibility themselves.
type TodoService struct {
	todoRepo         repository.TodoRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
}

// NewTodoService creates a new TodoService
func NewTodoService(
	todoRepo repository.TodoRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
) *TodoService {
	return &TodoService{
		todoRepo:         todoRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
	}
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Title       string
	Description string
	Priority    *models.TodoPriority
	DueDate     *time.Time
	Visibility  models.TodoVisibility
	SharedWith  []uint64
}

// UpdateTodoInput represents a partial patch. Pointer fields are applied only
// when non-nil; the Clear/Set flags distinguish "absent" from "set to null".
type UpdateTodoInput struct {
	Title         *string
	Description   *string
	Status        *models.TodoStatus
	Priority      *models.TodoPriority
	ClearPriority bool
	DueDate       *time.Time
	ClearDueDate  bool
	Visibility    *models.TodoVisibility
	SharedWith    []uint64
	SharedWithSet bool
}

// CreateTodo persists a new todo and queues notifications for every user it
// becomes visible to.
func (s *TodoService) CreateTodo(owner *models.User, input CreateTodoInput) (*models.Todo, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.Visibility == "" {
		input.Visibility = models.VisibilityPrivate
	}
	if err := validVisibility(input.Visibility); err != nil {
		return nil, err
	}
	if input.Priority != nil {
		if err := validPriority(*input.Priority); err != nil {
			return nil, err
		}
	}

	sharedWith, err := s.validateShareList(owner, input.SharedWith)
	if err != nil {
		return nil, err
	}
	if input.Visibility != models.VisibilitySpecific {
		sharedWith = nil
	}

	todo := &models.Todo{
		Title:       strings.TrimSpace(input.Title),
		Description: normalizeDescription(input.Description),
		OwnerID:     owner.ID,
		Status:      models.TodoStatusOpen,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Visibility:  input.Visibility,
	}

	if err := s.todoRepo.Create(todo, sharedWith); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	if err := s.queueNotifications(owner, todo, sharedWith); err != nil {
		return nil, err
	}

	return s.todoRepo.FindByID(todo.ID)
}

// GetTodo returns a todo the requester may read. Unreadable todos are
// reported as not found, uniformly hiding their existence.
func (s *TodoService) GetTodo(requester *models.User, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	if !access.CanRead(requester, todo) {
		return nil, ErrTodoNotFound
	}

	return todo, nil
}

// UpdateTodo applies a partial patch. Only the owner may write; a readable
// but unowned todo yields ErrNotTodoOwner.
func (s *TodoService) UpdateTodo(requester *models.User, todoID uint64, input UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.GetTodo(requester, todoID)
	if err != nil {
		return nil, err
	}
	if !access.CanWrite(requester, todo) {
		return nil, ErrNotTodoOwner
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		todo.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		todo.Description = normalizeDescription(*input.Description)
	}
	if input.Status != nil {
		if *input.Status != models.TodoStatusOpen && *input.Status != models.TodoStatusCompleted {
			return nil, ErrInvalidStatus
		}
		todo.Status = *input.Status
	}
	if input.ClearPriority {
		todo.Priority = nil
	} else if input.Priority != nil {
		if err := validPriority(*input.Priority); err != nil {
			return nil, err
		}
		todo.Priority = input.Priority
	}
	if input.ClearDueDate {
		todo.DueDate = nil
	} else if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}
	if input.Visibility != nil {
		if err := validVisibility(*input.Visibility); err != nil {
			return nil, err
		}
		todo.Visibility = *input.Visibility
	}

	var sharedWith []uint64
	if input.SharedWithSet {
		sharedWith, err = s.validateShareList(requester, input.SharedWith)
		if err != nil {
			return nil, err
		}
	} else {
		sharedWith = todo.SharedUserIDs()
	}
	if todo.Visibility != models.VisibilitySpecific {
		sharedWith = nil
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	if input.SharedWithSet || input.Visibility != nil {
		if err := s.todoRepo.ReplaceShares(todo.ID, sharedWith); err != nil {
			return nil, fmt.Errorf("failed to update shares: %w", err)
		}
		// Newly visible users get a queued notification; duplicates for
		// (todo, user) pairs already notified are skipped.
		if err := s.queueNotifications(requester, todo, sharedWith); err != nil {
			return nil, err
		}
	}

	return s.todoRepo.FindByID(todo.ID)
}

// ListMy returns the user's own todos plus org-visible todos from the user's
// organization.
func (s *TodoService) ListMy(user *models.User, offset, limit int) ([]models.Todo, int64, error) {
	return s.todoRepo.ListVisible(user, repository.TodoFilterMy, offset, limit)
}

// ListShared returns todos the user does not own that are org-visible or
// explicitly shared with the user.
func (s *TodoService) ListShared(user *models.User, offset, limit int) ([]models.Todo, int64, error) {
	return s.todoRepo.ListVisible(user, repository.TodoFilterShared, offset, limit)
}

// DeleteTodo removes an owned todo together with its shares, messages, and
// notifications.
func (s *TodoService) DeleteTodo(requester *models.User, todoID uint64) error {
	todo, err := s.GetTodo(requester, todoID)
	if err != nil {
		return err
	}
	if !access.CanWrite(requester, todo) {
		return ErrNotTodoOwner
	}

	if err := s.todoRepo.Delete(todo.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// queueNotifications creates one pending notification per user the todo is
// now visible to: all other org members for ORG visibility, the share list
// for SPECIFIC.
func (s *TodoService) queueNotifications(owner *models.User, todo *models.Todo, sharedWith []uint64) error {
	var userIDs []uint64

	switch todo.Visibility {
	case models.VisibilityOrg:
		members, err := s.userRepo.ListByOrganization(owner.OrganizationID)
		if err != nil {
			return fmt.Errorf("failed to list organization members: %w", err)
		}
		for _, member := range members {
			if member.ID != owner.ID {
				userIDs = append(userIDs, member.ID)
			}
		}
	case models.VisibilitySpecific:
		userIDs = sharedWith
	default:
		return nil
	}

	notifications := make([]models.TodoNotification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, models.TodoNotification{
			TodoID: todo.ID,
			UserID: userID,
		})
	}

	if err := s.notificationRepo.CreateMany(notifications); err != nil {
		return fmt.Errorf("failed to queue notifications: %w", err)
	}
	return nil
}

// validateShareList checks that every shared user exists and drops the owner
// from the list.
func (s *TodoService) validateShareList(owner *models.User, userIDs []uint64) ([]uint64, error) {
	var cleaned []uint64
	for _, id := range userIDs {
		if id == owner.ID {
			continue
		}
		if _, err := s.userRepo.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidShareUser
			}
			return nil, fmt.Errorf("failed to check shared user: %w", err)
		}
		cleaned = append(cleaned, id)
	}
	return cleaned, nil
}

// normalizeDescription maps blank descriptions to "no description" rather
// than storing an empty string.
func normalizeDescription(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validVisibility(v models.TodoVisibility) error {
	switch v {
	case models.VisibilityPrivate, models.VisibilityOrg, models.VisibilitySpecific:
		return nil
	}
	return ErrInvalidVisibility
}

func validPriority(p models.TodoPriority) error {
	switch p {
	case models.TodoPriorityLow, models.TodoPriorityMedium, models.TodoPriorityHigh:
		return nil
	}
	return ErrInvalidPriority
}
