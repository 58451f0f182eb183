package models

import "time"

// MotivationalMessage is display content, one logical record per calendar
// date.
type MotivationalMessage struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Author    *string   `gorm:"type:varchar(255)" json:"author"`
	Category  *string   `gorm:"type:varchar(100)" json:"category"`
	Date      time.Time `gorm:"type:date;uniqueIndex;not null" json:"date"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
