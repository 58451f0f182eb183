package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tsubakurame/team-todo-api/internal/dto"
	apierrors "github.com/tsubakurame/team-todo-api/internal/errors"
	"github.com/tsubakurame/team-todo-api/internal/middleware"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/services"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

// TodoHandler exposes todo CRUD over HTTP.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns the todos visible to the current user. The filter query
// parameter selects "my" (owned plus org-visible) or "shared" (not owned,
// org-visible or shared with me).
func (h *TodoHandler) ListTodos(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	filter := repository.TodoListFilter(c.DefaultQuery("filter", string(repository.TodoFilterMy)))
	if filter != repository.TodoFilterMy && filter != repository.TodoFilterShared {
		apierrors.BadRequest(c, "filter must be \"my\" or \"shared\"")
		return
	}

	params := utils.GetPaginationParams(c)

	var (
		todos []models.Todo
		total int64
		err   error
	)
	if filter == repository.TodoFilterMy {
		todos, total, err = h.todoService.ListMy(user, params.Offset, params.Limit)
	} else {
		todos, total, err = h.todoService.ListShared(user, params.Offset, params.Limit)
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch todos")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, utils.PaginationResponse{
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// CreateTodo creates a new todo.
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTodoRequest struct {
		Title       string                `json:"title" binding:"required"`
		Description string                `json:"description"`
		Priority    *models.TodoPriority  `json:"priority"`
		DueDate     *string               `json:"due_date"`
		Visibility  models.TodoVisibility `json:"visibility"`
		SharedWith  []uint64              `json:"shared_with"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Visibility:  req.Visibility,
		SharedWith:  req.SharedWith,
	}

	if req.DueDate != nil && *req.DueDate != "" {
		dueDate, err := utils.ParseDueDate(*req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		input.DueDate = &dueDate
	}

	todo, err := h.todoService.CreateTodo(user, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// GetTodo returns a single todo by ID.
func (h *TodoHandler) GetTodo(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(user, todoID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a partial patch. The raw body is parsed as a map so
// "field absent" and "field set to null" can be told apart.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := patchFromRaw(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	todo, err := h.todoService.UpdateTodo(user, todoID, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo deletes an owned todo.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	user, exists := middleware.CurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	todoID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(user, todoID); err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo deleted successfully",
	})
}

// patchFromRaw translates a raw JSON object into an UpdateTodoInput.
func patchFromRaw(rawReq map[string]any) (services.UpdateTodoInput, error) {
	var input services.UpdateTodoInput

	if raw, ok := rawReq["title"]; ok {
		if title, ok := raw.(string); ok {
			input.Title = &title
		}
	}
	if raw, ok := rawReq["description"]; ok {
		description := ""
		if s, ok := raw.(string); ok {
			description = s
		}
		input.Description = &description
	}
	if raw, ok := rawReq["status"]; ok {
		if s, ok := raw.(string); ok {
			status := models.TodoStatus(s)
			input.Status = &status
		}
	}
	if raw, ok := rawReq["priority"]; ok {
		if raw == nil {
			input.ClearPriority = true
		} else if s, ok := raw.(string); ok {
			priority := models.TodoPriority(s)
			input.Priority = &priority
		}
	}
	if raw, ok := rawReq["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else if s, ok := raw.(string); ok {
			dueDate, err := utils.ParseDueDate(s)
			if err != nil {
				return input, err
			}
			input.DueDate = &dueDate
		}
	}
	if raw, ok := rawReq["visibility"]; ok {
		if s, ok := raw.(string); ok {
			visibility := models.TodoVisibility(s)
			input.Visibility = &visibility
		}
	}
	if raw, ok := rawReq["shared_with"]; ok {
		input.SharedWithSet = true
		if list, ok := raw.([]any); ok {
			for _, entry := range list {
				if n, ok := entry.(float64); ok && n >= 0 {
					input.SharedWith = append(input.SharedWith, uint64(n))
				}
			}
		}
	}

	return input, nil
}

func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}

func respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTodoOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidShareUser),
		errors.Is(err, services.ErrMessageContentRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
