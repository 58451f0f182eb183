package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Todo indexes for visibility filtering and calendar queries
		{"todos", "idx_todos_owner_id", "owner_id"},
		{"todos", "idx_todos_visibility", "visibility"},
		{"todos", "idx_todos_due_date", "due_date"},
		{"todos", "idx_todos_created_at", "created_at"},

		// Share and message lookups per todo
		{"todo_shares", "idx_todo_shares_user_id", "user_id"},
		{"messages", "idx_messages_todo_id", "todo_id"},

		// Notification batching selects on (sent, created_at)
		{"todo_notifications", "idx_todo_notifications_sent_created", "sent, created_at"},

		// Invitation duplicate check on (email, organization_id)
		{"org_invitations", "idx_org_invitations_email_org", "email, organization_id"},

		// Most-recent-token lookup for an identifier
		{"verification_tokens", "idx_verification_tokens_identifier_created", "identifier, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
