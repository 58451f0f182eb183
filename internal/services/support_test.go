package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

// fakeSender records outgoing mail and can be told to fail, per recipient or
// globally.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMail
	failAll bool
	failFor map[string]bool
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: make(map[string]bool)}
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll || f.failFor[to] {
		return fmt.Errorf("smtp unavailable for %s", to)
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (f *fakeSender) sentTo(to string) []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMail
	for _, m := range f.sent {
		if m.To == to {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Todo{},
		&models.TodoShare{},
		&models.Message{},
		&models.OrgInvitation{},
		&models.VerificationToken{},
		&models.TodoNotification{},
		&models.MotivationalMessage{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

func createOrg(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name}
	require.NoError(t, db.Create(org).Error)
	return org
}

func createUser(t *testing.T, db *gorm.DB, email string, orgID uint64) *models.User {
	t.Helper()
	user := &models.User{Email: email, OrganizationID: orgID}
	require.NoError(t, db.Create(user).Error)
	return user
}
