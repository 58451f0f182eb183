package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	Email          string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name           *string        `gorm:"type:varchar(255)" json:"name"`
	OrganizationID uint64         `gorm:"not null;index" json:"organization_id"`
	ZipCode        *string        `gorm:"type:varchar(20)" json:"zip_code"`
	Image          *string        `gorm:"type:text" json:"image"`
	PasswordHash   *string        `gorm:"type:varchar(255)" json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	OwnedTodos   []Todo       `gorm:"foreignKey:OwnerID" json:"-"`
	Shares       []TodoShare  `gorm:"foreignKey:UserID" json:"-"`
	Messages     []Message    `gorm:"foreignKey:AuthorID" json:"-"`
}
