package dto

import (
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64                `json:"id"`
	Title       string                `json:"title"`
	Description *string               `json:"description"`
	OwnerID     uint64                `json:"owner_id"`
	Status      models.TodoStatus     `json:"status"`
	Priority    *models.TodoPriority  `json:"priority"`
	DueDate     *time.Time            `json:"due_date"`
	Visibility  models.TodoVisibility `json:"visibility"`
	SharedWith  []UserDTO             `json:"shared_with,omitempty"`
	Owner       *UserDTO              `json:"owner,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// MessageDTO represents a todo comment in API responses
type MessageDTO struct {
	ID        uint64    `json:"id"`
	TodoID    uint64    `json:"todo_id"`
	AuthorID  uint64    `json:"author_id"`
	Content   string    `json:"content"`
	Author    *UserDTO  `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO                `json:"todos"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		OwnerID:     todo.OwnerID,
		Status:      todo.Status,
		Priority:    todo.Priority,
		DueDate:     todo.DueDate,
		Visibility:  todo.Visibility,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}

	// Include owner if preloaded
	if todo.Owner.ID != 0 {
		owner := ToUserDTO(todo.Owner)
		dto.Owner = &owner
	}

	// Include share list if preloaded
	if todo.Visibility == models.VisibilitySpecific && len(todo.Shares) > 0 {
		dto.SharedWith = make([]UserDTO, 0, len(todo.Shares))
		for _, share := range todo.Shares {
			if share.User.ID != 0 {
				dto.SharedWith = append(dto.SharedWith, ToUserDTO(share.User))
			}
		}
	}

	return dto
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(message models.Message) MessageDTO {
	dto := MessageDTO{
		ID:        message.ID,
		TodoID:    message.TodoID,
		AuthorID:  message.AuthorID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}

	if message.Author.ID != 0 {
		author := ToUserDTO(message.Author)
		dto.Author = &author
	}

	return dto
}

// ToTodoListResponse converts a slice of todos to TodoListResponse
func ToTodoListResponse(todos []models.Todo, pagination utils.PaginationResponse) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}
	return TodoListResponse{
		Todos:      items,
		Pagination: pagination,
	}
}
