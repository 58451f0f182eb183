package repository

import (
	"time"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

// CreateMany inserts notifications, skipping duplicates for the same
// (todo, user) pair. The unique index makes duplicate creation a no-op
// rather than an error.
func (r *GormNotificationRepository) CreateMany(notifications []models.TodoNotification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "todo_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&notifications).Error
}

// ListPending lists unsent notifications created at or before the cutoff
func (r *GormNotificationRepository) ListPending(cutoff time.Time) ([]models.TodoNotification, error) {
	var notifications []models.TodoNotification
	err := r.db.
		Preload("Todo").
		Preload("Todo.Owner").
		Preload("User").
		Where("sent = ? AND created_at <= ?", false, cutoff).
		Order("user_id, created_at").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkSent marks the given notifications as sent at the given time
func (r *GormNotificationRepository) MarkSent(ids []uint64, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.TodoNotification{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"sent":    true,
			"sent_at": sentAt,
		}).Error
}
