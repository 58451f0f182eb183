package repository

import (
	"errors"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// DefaultOrganizationName names the catch-all organization users land in
// before joining a team.
const DefaultOrganizationName = "Personal"

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(org *models.Organization) error {
	return r.db.Create(org).Error
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by slug. Slugs are stored lowercase, so a
// single exact lookup covers case-insensitive resolution when the caller
// normalizes its input.
func (r *GormOrganizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindOrCreateDefault returns the default organization, creating it on first
// use.
func (r *GormOrganizationRepository) FindOrCreateDefault() (*models.Organization, error) {
	var org models.Organization
	err := r.db.Where("is_default = ?", true).First(&org).Error
	if err == nil {
		return &org, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	org = models.Organization{
		Name:      DefaultOrganizationName,
		IsDefault: true,
	}
	if err := r.db.Create(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update persists changes to an organization
func (r *GormOrganizationRepository) Update(org *models.Organization) error {
	return r.db.Save(org).Error
}
