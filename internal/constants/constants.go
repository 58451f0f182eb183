package constants

import "time"

// Session
const (
	SessionCookieName = "todo_session"
	ContextKeyUserID  = "user_id"
)

// Validation limits
const (
	MinPasswordLength = 8
	SlugPattern       = "^[a-z0-9-]{3,30}$"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	SignInCodeLength = 6
	SignInCodeTTL    = 10 * time.Minute
	SignInTokenTTL   = 24 * time.Hour
)

// Invitations
const (
	InvitationTTL = 7 * 24 * time.Hour
)

// Notification batching: a notification must be at least this old before it
// is picked up by a digest run.
const (
	NotificationMinAge = 2 * time.Hour
)
