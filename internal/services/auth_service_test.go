package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tsubakurame/team-todo-api/internal/models"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/utils"
)

func setupAuthService(t *testing.T) (*AuthService, *gorm.DB, *fakeSender) {
	t.Helper()

	db := openTestDB(t)
	mail := newFakeSender()
	svc := NewAuthService(
		repository.NewUserRepository(db),
		repository.NewOrganizationRepository(db),
		repository.NewTokenRepository(db),
		mail,
		"http://localhost:8080",
	)
	return svc, db, mail
}

func TestRequestCode_StoresTokenAndSendsMail(t *testing.T) {
	svc, db, mail := setupAuthService(t)

	err := svc.RequestCode(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)

	var record models.VerificationToken
	require.NoError(t, db.First(&record).Error)
	require.Equal(t, "alice@example.com", record.Identifier)
	require.Len(t, record.Code, 6)
	require.Equal(t, utils.CodeFromToken(record.Token), record.Code)
	require.True(t, record.ExpiresAt.After(time.Now()))

	sent := mail.sentTo("alice@example.com")
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Body, record.Code)
	require.Contains(t, sent[0].Body, record.Token)
}

func TestRequestCode_MailFailureSurfaces(t *testing.T) {
	svc, _, mail := setupAuthService(t)
	mail.failAll = true

	err := svc.RequestCode(context.Background(), "alice@example.com")
	require.ErrorIs(t, err, ErrEmailSendFailed)
}

func TestVerifyCode_AcceptsStoredCode(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))

	var record models.VerificationToken
	require.NoError(t, db.First(&record).Error)

	// Input is normalized: lowercase, separators, surrounding spaces.
	messy := " " + strings.ToLower(record.Code[:3]) + "-" + record.Code[3:] + " "
	token, err := svc.VerifyCode("Alice@Example.com", messy)
	require.NoError(t, err)
	require.Equal(t, record.Token, token)
}

func TestVerifyCode_AcceptsTokenPrefix(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	// A record stored without a code still verifies via the token prefix.
	record := &models.VerificationToken{
		Token:      utils.GenerateToken(),
		Identifier: "alice@example.com",
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(record).Error)

	token, err := svc.VerifyCode("alice@example.com", record.Token[:6])
	require.NoError(t, err)
	require.Equal(t, record.Token, token)
}

func TestVerifyCode_UsesMostRecentToken(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))
	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))

	var records []models.VerificationToken
	require.NoError(t, db.Order("created_at").Find(&records).Error)
	require.Len(t, records, 2)

	// Force distinct creation times so "latest" is unambiguous.
	require.NoError(t, db.Model(&models.VerificationToken{}).
		Where("token = ?", records[0].Token).
		Update("created_at", time.Now().Add(-time.Minute)).Error)

	token, err := svc.VerifyCode("alice@example.com", records[1].Code)
	require.NoError(t, err)
	require.Equal(t, records[1].Token, token)

	// The superseded code no longer verifies.
	_, err = svc.VerifyCode("alice@example.com", records[0].Code)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyCode_Rejections(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	_, err := svc.VerifyCode("nobody@example.com", "ABC123")
	require.ErrorIs(t, err, ErrInvalidCode)

	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))

	var record models.VerificationToken
	require.NoError(t, db.First(&record).Error)

	_, err = svc.VerifyCode("alice@example.com", "WRONG1")
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.VerifyCode("alice@example.com", "")
	require.ErrorIs(t, err, ErrInvalidCode)

	// Codes expire before the token record does.
	require.NoError(t, db.Model(&models.VerificationToken{}).
		Where("token = ?", record.Token).
		Update("created_at", time.Now().Add(-11*time.Minute)).Error)

	_, err = svc.VerifyCode("alice@example.com", record.Code)
	require.ErrorIs(t, err, ErrCodeExpired)
}

func TestCompleteSignIn_CreatesUserAndConsumesToken(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))

	var record models.VerificationToken
	require.NoError(t, db.First(&record).Error)

	user, err := svc.CompleteSignIn(record.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)

	var org models.Organization
	require.NoError(t, db.First(&org, user.OrganizationID).Error)
	require.True(t, org.IsDefault)

	// The token is single-use.
	_, err = svc.CompleteSignIn(record.Token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCompleteSignIn_ExistingUserKeepsOrganization(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	org := createOrg(t, db, "Acme")
	existing := createUser(t, db, "alice@example.com", org.ID)

	require.NoError(t, svc.RequestCode(context.Background(), "alice@example.com"))

	var record models.VerificationToken
	require.NoError(t, db.First(&record).Error)

	user, err := svc.CompleteSignIn(record.Token)
	require.NoError(t, err)
	require.Equal(t, existing.ID, user.ID)
	require.Equal(t, org.ID, user.OrganizationID)
}

func TestCompleteSignIn_ExpiredToken(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	record := &models.VerificationToken{
		Token:      utils.GenerateToken(),
		Identifier: "alice@example.com",
		ExpiresAt:  time.Now().Add(-time.Minute),
	}
	require.NoError(t, db.Create(record).Error)

	_, err := svc.CompleteSignIn(record.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestLogin_PasswordFallback(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	// No password set yet.
	_, err := svc.Login("alice@example.com", "supersecret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.UpdatePassword(user.ID, "supersecret"))

	got, err := svc.Login("alice@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Login("alice@example.com", "wrongpassword")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePassword_TooShort(t *testing.T) {
	svc, db, _ := setupAuthService(t)

	org := createOrg(t, db, "Acme")
	user := createUser(t, db, "alice@example.com", org.ID)

	require.ErrorIs(t, svc.UpdatePassword(user.ID, "short"), ErrPasswordTooShort)
}
