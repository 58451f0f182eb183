package models

import "time"

// Message is an append-only comment on a todo.
type Message struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TodoID    uint64    `gorm:"not null;index" json:"todo_id"`
	AuthorID  uint64    `gorm:"not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Todo   Todo `gorm:"foreignKey:TodoID" json:"todo,omitempty"`
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
