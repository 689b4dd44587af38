// Package eightball serves canned answers scoped per chat.
package eightball

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Answer is one possible eight ball response for a chat
type Answer struct {
	ID        uint   `gorm:"primaryKey"`
	ChatID    uint   `gorm:"index;not null"`
	Answer    string `gorm:"column:answer;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for Answer
func (Answer) TableName() string {
	return "eight_ball_answers"
}

// Store handles persistence of eight ball answers
type Store struct {
	db *gorm.DB
}

// NewStore creates a new eight ball store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RandomForChat retrieves a random answer for a chat, or nil when the
// chat has none configured.
func (s *Store) RandomForChat(ctx context.Context, chatID uint) (*Answer, error) {
	var answer Answer
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("RANDOM()").
		First(&answer).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random answer: %w", err)
	}
	return &answer, nil
}

// Create saves an answer
func (s *Store) Create(ctx context.Context, answer *Answer) error {
	if err := s.db.WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}
