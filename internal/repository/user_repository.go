package repository

import (
	"errors"
	"strings"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email. Emails are stored lowercase.
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreateByEmail returns the user for an email, creating one in the
// default organization when absent.
func (r *GormUserRepository) FindOrCreateByEmail(email string, defaultOrgID uint64) (*models.User, error) {
	user, err := r.FindByEmail(email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		Email:          strings.ToLower(email),
		OrganizationID: defaultOrgID,
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Update persists changes to a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ListByOrganization lists all users in an organization
func (r *GormUserRepository) ListByOrganization(orgID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("organization_id = ?", orgID).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountByOrganization counts users in an organization
func (r *GormUserRepository) CountByOrganization(orgID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}
