package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoStatus string

const (
	TodoStatusOpen      TodoStatus = "OPEN"
	TodoStatusCompleted TodoStatus = "COMPLETED"
)

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "LOW"
	TodoPriorityMedium TodoPriority = "MEDIUM"
	TodoPriorityHigh   TodoPriority = "HIGH"
)

type TodoVisibility string

const (
	// VisibilityPrivate limits access to the owner.
	VisibilityPrivate TodoVisibility = "PRIVATE"
	// VisibilityOrg grants read access to every member of the owner's organization.
	VisibilityOrg TodoVisibility = "ORG"
	// VisibilitySpecific grants read access to the owner plus the share list.
	VisibilitySpecific TodoVisibility = "SPECIFIC"
)

type Todo struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description *string        `gorm:"type:text" json:"description"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	Status      TodoStatus     `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	Priority    *TodoPriority  `gorm:"type:varchar(10)" json:"priority"`
	DueDate     *time.Time     `gorm:"index" json:"due_date"`
	Visibility  TodoVisibility `gorm:"type:varchar(10);not null;default:'PRIVATE'" json:"visibility"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner         User               `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Shares        []TodoShare        `gorm:"foreignKey:TodoID" json:"shares,omitempty"`
	Messages      []Message          `gorm:"foreignKey:TodoID" json:"messages,omitempty"`
	Notifications []TodoNotification `gorm:"foreignKey:TodoID" json:"-"`
}

// SharedUserIDs returns the ids on the share list. Shares must be preloaded.
func (t *Todo) SharedUserIDs() []uint64 {
	ids := make([]uint64, len(t.Shares))
	for i, s := range t.Shares {
		ids[i] = s.UserID
	}
	return ids
}
