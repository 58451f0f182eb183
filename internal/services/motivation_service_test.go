package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

func TestMessageOfTheDay_ReturnsStoredRow(t *testing.T) {
	db := openTestDB(t)
	svc := NewMotivationService(db, "")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	author := "Anonymous"
	stored := &models.MotivationalMessage{
		Message: "Ship it.",
		Author:  &author,
		Date:    today,
		Active:  true,
	}
	require.NoError(t, db.Create(stored).Error)

	got, err := svc.MessageOfTheDay(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Ship it.", got.Message)
}

// Without an API key and without a stored row the static fallback is served
// and nothing is persisted.
func TestMessageOfTheDay_FallbackWithoutClient(t *testing.T) {
	db := openTestDB(t)
	svc := NewMotivationService(db, "")

	got, err := svc.MessageOfTheDay(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, got.Message)

	var count int64
	require.NoError(t, db.Model(&models.MotivationalMessage{}).Count(&count).Error)
	require.Zero(t, count)
}
