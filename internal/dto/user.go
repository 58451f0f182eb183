package dto

import (
	"github.com/tsubakurame/team-todo-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64  `json:"id"`
	Email          string  `json:"email"`
	Name           *string `json:"name,omitempty"`
	OrganizationID uint64  `json:"organization_id"`
	ZipCode        *string `json:"zip_code,omitempty"`
	Image          *string `json:"image,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		OrganizationID: user.OrganizationID,
		ZipCode:        user.ZipCode,
		Image:          user.Image,
	}
}
