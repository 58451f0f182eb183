package repository

import (
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// Create persists a verification token
func (r *GormTokenRepository) Create(token *models.VerificationToken) error {
	return r.db.Create(token).Error
}

// FindLatestByIdentifier returns the most recent unexpired token for an
// identifier. Single ordered query; ties on created_at are broken by the
// token value so two equally recent tokens cannot both look "most recent".
func (r *GormTokenRepository) FindLatestByIdentifier(identifier string, now time.Time) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.
		Where("identifier = ? AND expires_at > ?", identifier, now).
		Order("created_at DESC, token DESC").
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// FindByToken finds a token by its value
func (r *GormTokenRepository) FindByToken(token string) (*models.VerificationToken, error) {
	var record models.VerificationToken
	if err := r.db.Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes a consumed token
func (r *GormTokenRepository) Delete(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.VerificationToken{}).Error
}
