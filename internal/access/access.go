// Package access is the single source of truth for todo visibility. Every
// read, list, update, and message path goes through these predicates; route
// handlers never reimplement the checks.
package access

import (
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

// CanWrite reports whether the user may mutate the todo. Only the owner may
// write; shared and org visibility never grant write access.
func CanWrite(user *models.User, todo *models.Todo) bool {
	if user == nil || todo == nil {
		return false
	}
	return todo.OwnerID == user.ID
}

// CanRead reports whether the user may see the todo. The todo's Owner and
// Shares relations must be loaded.
func CanRead(user *models.User, todo *models.Todo) bool {
	if user == nil || todo == nil {
		return false
	}
	if todo.OwnerID == user.ID {
		return true
	}

	switch todo.Visibility {
	case models.VisibilityOrg:
		return todo.Owner.OrganizationID == user.OrganizationID
	case models.VisibilitySpecific:
		for _, share := range todo.Shares {
			if share.UserID == user.ID {
				return true
			}
		}
	}
	return false
}

// CanMessage reports whether the user may comment on the todo. Anyone who
// can read may message.
func CanMessage(user *models.User, todo *models.Todo) bool {
	return CanRead(user, todo)
}

// VisibleScope applies the CanRead predicate as a storage-layer filter so
// list queries never return rows the gate would reject. The two must agree;
// the access tests check every visibility/ownership/sharing combination
// against both.
func VisibleScope(db *gorm.DB, user *models.User) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		orgOwners := db.Model(&models.User{}).
			Select("id").
			Where("organization_id = ?", user.OrganizationID)

		shareExists := db.Model(&models.TodoShare{}).
			Select("1").
			Where("todo_shares.todo_id = todos.id").
			Where("todo_shares.user_id = ?", user.ID).
			Where("todo_shares.deleted_at IS NULL")

		return q.Where(
			db.Where("todos.owner_id = ?", user.ID).
				Or("todos.visibility = ? AND todos.owner_id IN (?)", models.VisibilityOrg, orgOwners).
				Or("todos.visibility = ? AND EXISTS (?)", models.VisibilitySpecific, shareExists),
		)
	}
}
