package quotes

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store handles persistence of quotes
type Store struct {
	db *gorm.DB
}

// NewStore creates a new quote store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create validates and saves a quote
func (s *Store) Create(ctx context.Context, quote *Quote) error {
	if err := quote.Validate(); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(quote).Error; err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// LatestUnconfirmed returns the member's most recent quote in a chat with
// an unconfirmed location, or nil if there is none.
func (s *Store) LatestUnconfirmed(ctx context.Context, chatID, memberID uint) (*Quote, error) {
	var quote Quote
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND member_id = ? AND location_confirmed = ?", chatID, memberID, false).
		Order("created_at DESC, id DESC").
		First(&quote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find unconfirmed quote: %w", err)
	}
	return &quote, nil
}

// Confirm marks a quote's location as settled without coordinates
func (s *Store) Confirm(ctx context.Context, quote *Quote) error {
	quote.LocationConfirmed = true
	err := s.db.WithContext(ctx).
		Model(quote).
		Update("location_confirmed", true).Error
	if err != nil {
		return fmt.Errorf("failed to confirm quote location: %w", err)
	}
	return nil
}

// AttachLocation sets coordinates on a quote and confirms its location
func (s *Store) AttachLocation(ctx context.Context, quote *Quote, longitude, latitude float64) error {
	quote.Longitude = &longitude
	quote.Latitude = &latitude
	quote.LocationConfirmed = true
	err := s.db.WithContext(ctx).
		Model(quote).
		Updates(map[string]interface{}{
			"longitude":          longitude,
			"latitude":           latitude,
			"location_confirmed": true,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to attach location: %w", err)
	}
	return nil
}

// RandomForChat retrieves a random quote for a chat, optionally filtered
// by the stored author label. Returns nil when nothing matches.
func (s *Store) RandomForChat(ctx context.Context, chatID uint, author string) (*Quote, error) {
	query := s.db.WithContext(ctx).Where("chat_id = ?", chatID)
	if author != "" {
		query = query.Where("author = ?", author)
	}

	var quote Quote
	err := query.Order("RANDOM()").First(&quote).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get random quote: %w", err)
	}
	return &quote, nil
}

// CountForChat returns the number of quotes in a chat
func (s *Store) CountForChat(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Quote{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}
