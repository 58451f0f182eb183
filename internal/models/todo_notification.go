package models

import "time"

// TodoNotification is a queued, not-yet-delivered notice that a todo became
// visible to a user. Rows are created when a todo turns org-visible or is
// shared, and consumed by the digest batch job, which is the only writer of
// the Sent flag.
type TodoNotification struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	TodoID    uint64     `gorm:"not null;uniqueIndex:idx_todo_notifications_todo_user" json:"todo_id"`
	UserID    uint64     `gorm:"not null;uniqueIndex:idx_todo_notifications_todo_user" json:"user_id"`
	Sent      bool       `gorm:"not null;default:false;index" json:"sent"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `json:"created_at"`

	// Relations
	Todo Todo `gorm:"foreignKey:TodoID" json:"todo,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
