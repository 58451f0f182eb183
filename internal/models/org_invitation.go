package models

import "time"

// OrgInvitation is a token-based offer for an email address to join an
// organization. At most one active (unaccepted, unexpired) invitation should
// exist per (email, organization) pair; creation checks this.
type OrgInvitation struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	Email          string    `gorm:"type:varchar(255);not null;index" json:"email"`
	OrganizationID uint64    `gorm:"not null;index" json:"organization_id"`
	InvitedByID    uint64    `gorm:"not null" json:"invited_by_id"`
	Token          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	Accepted       bool      `gorm:"not null;default:false" json:"accepted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	InvitedBy    User         `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`
}

// Active reports whether the invitation can still be accepted.
func (i *OrgInvitation) Active(now time.Time) bool {
	return !i.Accepted && now.Before(i.ExpiresAt)
}
