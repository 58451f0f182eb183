package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidSlug          = errors.New("slug must be 3-30 characters of a-z, 0-9, or -")
	ErrSlugTaken            = errors.New("slug is already taken")
	ErrCannotRemoveSelf     = errors.New("cannot remove yourself from the organization")
	ErrLastMember           = errors.New("cannot remove the last member of an organization")
	ErrMemberNotFound       = errors.New("member not found in this organization")
)

// OrganizationService covers slug resolution and membership management.
type OrganizationService struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo:  orgRepo,
		userRepo: userRepo,
	}
}

// ResolveSlug maps a slug to its organization. Input is normalized to
// lowercase; because slugs are stored lowercase, one exact lookup covers
// case-insensitive resolution.
func (s *OrganizationService) ResolveSlug(slug string) (*models.Organization, error) {
	org, err := s.orgRepo.FindBySlug(utils.NormalizeSlug(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to resolve slug: %w", err)
	}
	return org, nil
}

// CheckSlug reports whether a slug is valid and available.
func (s *OrganizationService) CheckSlug(slug string) (bool, error) {
	normalized := utils.NormalizeSlug(slug)
	if !utils.ValidSlug(normalized) {
		return false, ErrInvalidSlug
	}

	_, err := s.orgRepo.FindBySlug(normalized)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	return false, fmt.Errorf("failed to check slug: %w", err)
}

// SetSlug assigns a user-chosen slug to the user's organization. Uniqueness
// is enforced at write time on the normalized value.
func (s *OrganizationService) SetSlug(user *models.User, slug string) (*models.Organization, error) {
	normalized := utils.NormalizeSlug(slug)
	if !utils.ValidSlug(normalized) {
		return nil, ErrInvalidSlug
	}

	existing, err := s.orgRepo.FindBySlug(normalized)
	if err == nil {
		if existing.ID == user.OrganizationID {
			return existing, nil
		}
		return nil, ErrSlugTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	org, err := s.orgRepo.FindByID(user.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	org.Slug = &normalized
	if err := s.orgRepo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update slug: %w", err)
	}
	return org, nil
}

// GetOrganization returns the organization of a user, assigning a generated
// slug on first read if none exists yet.
func (s *OrganizationService) GetOrganization(user *models.User) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(user.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if org.Slug == nil {
		generated, err := utils.GenerateSlug(org.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		org.Slug = &generated
		if err := s.orgRepo.Update(org); err != nil {
			return nil, fmt.Errorf("failed to assign slug: %w", err)
		}
	}

	return org, nil
}

// ListMembers lists the users of the requester's organization.
func (s *OrganizationService) ListMembers(user *models.User) ([]models.User, error) {
	members, err := s.userRepo.ListByOrganization(user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveMember moves a member of the requester's organization back to the
// default organization. Removing yourself or the last member is blocked.
func (s *OrganizationService) RemoveMember(requester *models.User, targetID uint64) error {
	if targetID == requester.ID {
		return ErrCannotRemoveSelf
	}

	target, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member: %w", err)
	}
	if target.OrganizationID != requester.OrganizationID {
		return ErrMemberNotFound
	}

	count, err := s.userRepo.CountByOrganization(requester.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count <= 1 {
		return ErrLastMember
	}

	defaultOrg, err := s.orgRepo.FindOrCreateDefault()
	if err != nil {
		return fmt.Errorf("failed to resolve default organization: %w", err)
	}

	target.OrganizationID = defaultOrg.ID
	if err := s.userRepo.Update(target); err != nil {
		return fmt.Errorf("failed to move member: %w", err)
	}
	return nil
}
