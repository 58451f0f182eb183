package dto

import (
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID   uint64  `json:"id"`
	Name string  `json:"name"`
	Slug *string `json:"slug"`
}

// InvitationDTO represents an invitation in API responses. The token is
// never exposed; it only travels inside the invitation email.
type InvitationDTO struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Accepted  bool      `json:"accepted"`
	ExpiresAt time.Time `json:"expires_at"`
	InvitedBy *UserDTO  `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	}
}

// ToInvitationDTO converts an OrgInvitation model to InvitationDTO
func ToInvitationDTO(invitation models.OrgInvitation) InvitationDTO {
	dto := InvitationDTO{
		ID:        invitation.ID,
		Email:     invitation.Email,
		Accepted:  invitation.Accepted,
		ExpiresAt: invitation.ExpiresAt,
		CreatedAt: invitation.CreatedAt,
	}

	if invitation.InvitedBy.ID != 0 {
		invitedBy := ToUserDTO(invitation.InvitedBy)
		dto.InvitedBy = &invitedBy
	}

	return dto
}
