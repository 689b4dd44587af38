package photos

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store handles persistence of photos
type Store struct {
	db *gorm.DB
}

// NewStore creates a new photo store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create validates and saves a photo
func (s *Store) Create(ctx context.Context, photo *Photo) error {
	if err := photo.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return fmt.Errorf("failed to create photo: %w", err)
	}
	return nil
}

// RandomForChat retrieves a random photo for a chat and bumps its access
// counter. Returns nil when the chat has no photos.
func (s *Store) RandomForChat(ctx context.Context, chatID uint) (*Photo, error) {
	var photo Photo
	err := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("RANDOM()").
		First(&photo).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random photo: %w", err)
	}

	photo.TimesAccessed++
	err = s.db.WithContext(ctx).
		Model(&photo).
		Update("times_accessed", gorm.Expr("times_accessed + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update photo access count: %w", err)
	}
	return &photo, nil
}
