package repository

import (
	"github.com/tsubakurame/team-todo-api/internal/access"
	"github.com/tsubakurame/team-todo-api/internal/database"
	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a todo together with its share list in one transaction
func (r *GormTodoRepository) Create(todo *models.Todo, sharedUserIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(todo).Error; err != nil {
			return err
		}

		if len(sharedUserIDs) == 0 {
			return nil
		}

		shares := make([]models.TodoShare, len(sharedUserIDs))
		for i, userID := range sharedUserIDs {
			shares[i] = models.TodoShare{TodoID: todo.ID, UserID: userID}
		}
		return tx.Create(&shares).Error
	})
}

// FindByID finds a todo with the relations the access predicates need
func (r *GormTodoRepository) FindByID(id uint64) (*models.Todo, error) {
	var todo models.Todo
	if err := r.db.
		Preload("Owner").
		Preload("Shares").
		Preload("Shares.User").
		First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListVisible lists todos the user may read, refined by the filter. The base
// restriction is access.VisibleScope, so the SQL filter and the CanRead gate
// cannot drift apart.
func (r *GormTodoRepository) ListVisible(user *models.User, filter TodoListFilter, offset, limit int) ([]models.Todo, int64, error) {
	query := r.db.Model(&models.Todo{}).
		Scopes(access.VisibleScope(r.db, user))

	switch filter {
	case TodoFilterMy:
		query = query.Where("todos.owner_id = ? OR todos.visibility = ?", user.ID, models.VisibilityOrg)
	case TodoFilterShared:
		query = query.Where("todos.owner_id <> ?", user.ID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var todos []models.Todo
	err := query.
		Order("todos.created_at DESC").
		Scopes(database.Paginate(utils.PaginationParams{Offset: offset, Limit: limit})).
		Preload("Owner").
		Preload("Shares").
		Preload("Shares.User").
		Find(&todos).Error
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// Update persists changes to a todo
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// ReplaceShares replaces the share list of a todo
func (r *GormTodoRepository) ReplaceShares(todoID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", todoID).Delete(&models.TodoShare{}).Error; err != nil {
			return err
		}

		if len(userIDs) == 0 {
			return nil
		}

		shares := make([]models.TodoShare, len(userIDs))
		for i, userID := range userIDs {
			shares[i] = models.TodoShare{TodoID: todoID, UserID: userID}
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "todo_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
			}).
			Create(&shares).Error
	})
}

// Delete removes a todo along with its shares, messages, and notifications
func (r *GormTodoRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", id).Delete(&models.TodoShare{}).Error; err != nil {
			return err
		}

		if err := tx.Where("todo_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		if err := tx.Where("todo_id = ?", id).Delete(&models.TodoNotification{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Todo{}, id).Error
	})
}

// CreateMessage appends a message to a todo
func (r *GormTodoRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// ListMessages lists a todo's messages oldest first, with authors loaded
func (r *GormTodoRepository) ListMessages(todoID uint64) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.
		Preload("Author").
		Where("todo_id = ?", todoID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
