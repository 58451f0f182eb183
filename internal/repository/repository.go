package repository

import (
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

// TodoListFilter selects which slice of visible todos a list query returns.
type TodoListFilter string

const (
	// TodoFilterMy selects todos the user owns plus org-visible todos from
	// the user's organization.
	TodoFilterMy TodoListFilter = "my"
	// TodoFilterShared selects todos the user does not own that are
	// org-visible or explicitly shared with the user.
	TodoFilterShared TodoListFilter = "shared"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (case-insensitive)
	FindByEmail(email string) (*models.User, error)

	// FindOrCreateByEmail returns the user for an email, creating one in the
	// given organization when absent.
	FindOrCreateByEmail(email string, defaultOrgID uint64) (*models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error

	// ListByOrganization lists all users in an organization
	ListByOrganization(orgID uint64) ([]models.User, error)

	// CountByOrganization counts users in an organization
	CountByOrganization(orgID uint64) (int64, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by its (lowercase) slug
	FindBySlug(slug string) (*models.Organization, error)

	// FindOrCreateDefault returns the default organization, creating it on
	// first use.
	FindOrCreateDefault() (*models.Organization, error)

	// Update persists changes to an organization
	Update(org *models.Organization) error
}

// TodoRepository defines the interface for todo and message data access
type TodoRepository interface {
	// Create creates a todo together with its share list in one transaction
	Create(todo *models.Todo, sharedUserIDs []uint64) error

	// FindByID finds a todo with Owner and Shares loaded
	FindByID(id uint64) (*models.Todo, error)

	// ListVisible lists todos the user may read, refined by the filter
	ListVisible(user *models.User, filter TodoListFilter, offset, limit int) ([]models.Todo, int64, error)

	// Update persists changes to a todo
	Update(todo *models.Todo) error

	// ReplaceShares replaces the share list of a todo
	ReplaceShares(todoID uint64, userIDs []uint64) error

	// Delete removes a todo along with its shares, messages, and
	// notifications
	Delete(id uint64) error

	// CreateMessage appends a message to a todo
	CreateMessage(message *models.Message) error

	// ListMessages lists a todo's messages oldest first, with authors loaded
	ListMessages(todoID uint64) ([]models.Message, error)
}

// NotificationRepository defines the interface for todo notification data access
type NotificationRepository interface {
	// CreateMany inserts notifications, skipping duplicates for the same
	// (todo, user) pair
	CreateMany(notifications []models.TodoNotification) error

	// ListPending lists unsent notifications created at or before the cutoff,
	// with Todo, Todo.Owner, and User loaded
	ListPending(cutoff time.Time) ([]models.TodoNotification, error)

	// MarkSent marks the given notifications as sent at the given time
	MarkSent(ids []uint64, sentAt time.Time) error
}

// TokenRepository defines the interface for verification token data access
type TokenRepository interface {
	// Create persists a verification token
	Create(token *models.VerificationToken) error

	// FindLatestByIdentifier returns the most recent unexpired token for an
	// identifier, in a single ordered query
	FindLatestByIdentifier(identifier string, now time.Time) (*models.VerificationToken, error)

	// FindByToken finds a token by its value
	FindByToken(token string) (*models.VerificationToken, error)

	// Delete removes a consumed token
	Delete(token string) error
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create persists an invitation
	Create(invitation *models.OrgInvitation) error

	// FindByID finds an invitation by ID
	FindByID(id uint64) (*models.OrgInvitation, error)

	// FindByToken finds an invitation by token, with Organization loaded
	FindByToken(token string) (*models.OrgInvitation, error)

	// FindActive returns the active (unaccepted, unexpired) invitation for an
	// (email, organization) pair, if any
	FindActive(email string, orgID uint64, now time.Time) (*models.OrgInvitation, error)

	// ListByOrganization lists an organization's invitations newest first
	ListByOrganization(orgID uint64) ([]models.OrgInvitation, error)

	// Update persists changes to an invitation
	Update(invitation *models.OrgInvitation) error

	// Delete removes an invitation
	Delete(id uint64) error

	// AcceptAndMoveUser marks the invitation accepted and moves the user into
	// the invitation's organization within a single transaction.
	AcceptAndMoveUser(invitation *models.OrgInvitation, user *models.User) error
}
