package models

import "time"

// VerificationToken backs the passwordless sign-in flow. The Code column
// holds the short form typed by the user; the token itself completes
// magic-link sign-ins. Tokens are superseded by newer ones for the same
// identifier but stay valid until their own expiry.
type VerificationToken struct {
	Token      string    `gorm:"type:varchar(64);primarykey" json:"-"`
	Identifier string    `gorm:"type:varchar(255);not null;index" json:"identifier"`
	Code       string    `gorm:"type:varchar(12)" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
