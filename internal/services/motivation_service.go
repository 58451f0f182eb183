package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tsubakurame/team-todo-api/internal/models"
)

// MotivationService serves the message of the day. When no row exists for
// today's date and an OpenAI key is configured, one is generated and stored;
// otherwise a static fallback is returned without persisting anything.
type MotivationService struct {
	db     *gorm.DB
	client *openai.Client
}

type generatedMotivation struct {
	Message  string  `json:"message"`
	Author   *string `json:"author"`
	Category *string `json:"category"`
}

func NewMotivationService(db *gorm.DB, apiKey string) *MotivationService {
	s := &MotivationService{db: db}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

var fallbackMotivation = models.MotivationalMessage{
	Message: "Small steps every day add up to big results.",
	Active:  true,
}

// MessageOfTheDay returns today's motivational message.
func (s *MotivationService) MessageOfTheDay(ctx context.Context) (*models.MotivationalMessage, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var msg models.MotivationalMessage
	err := s.db.Where("date = ? AND active = ?", today, true).First(&msg).Error
	if err == nil {
		return &msg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load motivational message: %w", err)
	}

	if s.client == nil {
		fallback := fallbackMotivation
		fallback.Date = today
		return &fallback, nil
	}

	generated, err := s.generate(ctx)
	if err != nil {
		fallback := fallbackMotivation
		fallback.Date = today
		return &fallback, nil
	}

	msg = models.MotivationalMessage{
		Message:  generated.Message,
		Author:   generated.Author,
		Category: generated.Category,
		Date:     today,
		Active:   true,
	}
	// A concurrent request may have stored today's row first; the unique
	// index on date makes this a no-op in that case.
	if err := s.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("failed to store motivational message: %w", err)
	}

	return &msg, nil
}

func (s *MotivationService) generate(ctx context.Context) (*generatedMotivation, error) {
	prompt := `Write one short motivational message for a team to-do application.

Return only JSON in this shape, no explanations:
{
  "message": "the motivational message, at most two sentences",
  "author": "attributed author, or null for an original message",
  "category": "a one-word theme such as focus, teamwork, or persistence"
}`

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var generated generatedMotivation
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	if generated.Message == "" {
		return nil, fmt.Errorf("AI returned an empty message")
	}

	return &generated, nil
}
