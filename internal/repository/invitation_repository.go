package repository

import (
	"strings"
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create persists an invitation
func (r *GormInvitationRepository) Create(invitation *models.OrgInvitation) error {
	invitation.Email = strings.ToLower(invitation.Email)
	return r.db.Create(invitation).Error
}

// FindByID finds an invitation by ID
func (r *GormInvitationRepository) FindByID(id uint64) (*models.OrgInvitation, error) {
	var invitation models.OrgInvitation
	if err := r.db.First(&invitation, id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindByToken finds an invitation by token, with Organization loaded
func (r *GormInvitationRepository) FindByToken(token string) (*models.OrgInvitation, error) {
	var invitation models.OrgInvitation
	if err := r.db.
		Preload("Organization").
		Where("token = ?", token).
		First(&invitation).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// FindActive returns the active (unaccepted, unexpired) invitation for an
// (email, organization) pair, if any
func (r *GormInvitationRepository) FindActive(email string, orgID uint64, now time.Time) (*models.OrgInvitation, error) {
	var invitation models.OrgInvitation
	err := r.db.
		Where("email = ? AND organization_id = ? AND accepted = ? AND expires_at > ?",
			strings.ToLower(email), orgID, false, now).
		Order("created_at DESC").
		First(&invitation).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListByOrganization lists an organization's invitations newest first
func (r *GormInvitationRepository) ListByOrganization(orgID uint64) ([]models.OrgInvitation, error) {
	var invitations []models.OrgInvitation
	if err := r.db.
		Preload("InvitedBy").
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// Update persists changes to an invitation
func (r *GormInvitationRepository) Update(invitation *models.OrgInvitation) error {
	return r.db.Save(invitation).Error
}

// Delete removes an invitation
func (r *GormInvitationRepository) Delete(id uint64) error {
	return r.db.Delete(&models.OrgInvitation{}, id).Error
}

// AcceptAndMoveUser marks the invitation accepted and moves the user into
// the invitation's organization. Both writes happen in one transaction so a
// crash cannot leave the invitation accepted without the org move.
func (r *GormInvitationRepository) AcceptAndMoveUser(invitation *models.OrgInvitation, user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrgInvitation{}).
			Where("id = ?", invitation.ID).
			Update("accepted", true).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("organization_id", invitation.OrganizationID).Error; err != nil {
			return err
		}

		invitation.Accepted = true
		user.OrganizationID = invitation.OrganizationID
		return nil
	})
}
