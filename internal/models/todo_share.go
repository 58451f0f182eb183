package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoShare struct {
	TodoID    uint64         `gorm:"primarykey" json:"todo_id"`
	UserID    uint64         `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Todo Todo `gorm:"foreignKey:TodoID" json:"todo,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
