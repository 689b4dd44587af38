// Package archive keeps a rolling window of raw inbound messages per chat.
// The window feeds the markov collaborator with seed text and is trimmed
// by the Cleaner after a configurable retention.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry represents one archived message
type Entry struct {
	ID        uint           `gorm:"primarykey"`
	ChatID    int64          `gorm:"not null;uniqueIndex:uq_archive_entries"`
	MessageID int64          `gorm:"not null;uniqueIndex:uq_archive_entries"`
	Date      int64          `gorm:"index;not null"`
	Message   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for Entry
func (Entry) TableName() string {
	return "archive_entries"
}

// Service provides archive operations
type Service struct {
	db *gorm.DB
}

// NewService creates a new archive service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Message is the subset of an inbound message the archive keeps
type Message struct {
	MessageID int64  `json:"message_id"`
	ChatID    int64  `json:"chat_id"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
	SenderID  int64  `json:"sender_id,omitempty"`
}

// Add records a message, replacing an earlier sighting of the same
// (chat, message) pair on redelivery.
func (s *Service) Add(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal archive message: %w", err)
	}

	entry := Entry{
		ChatID:    msg.ChatID,
		MessageID: msg.MessageID,
		Date:      msg.Date,
		Message:   datatypes.JSON(payload),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"date", "message"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to archive message: %w", err)
	}
	return nil
}

// RecentTexts returns up to limit non-empty message texts for a chat,
// newest first.
func (s *Service) RecentTexts(ctx context.Context, chatID int64, limit int) ([]string, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("date DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}

	texts := make([]string, 0, len(entries))
	for _, entry := range entries {
		var msg Message
		if err := json.Unmarshal(entry.Message, &msg); err != nil {
			continue
		}
		if msg.Text != "" {
			texts = append(texts, msg.Text)
		}
	}
	return texts, nil
}

// Clean removes entries older than the given retention
func (s *Service) Clean(ctx context.Context, keep time.Duration) (int64, error) {
	cutoff := time.Now().Add(-keep).Unix()
	res := s.db.WithContext(ctx).
		Where("date < ?", cutoff).
		Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clean archive: %w", res.Error)
	}
	return res.RowsAffected, nil
}
