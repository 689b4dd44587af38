package photos

import (
	"time"

	"github.com/memoriabot/memoria/internal/storage"
)

// Photo represents a saved photo reference. TelegramPhoto is the provider
// file handle used to re-send the image later.
type Photo struct {
	ID            uint   `gorm:"primaryKey"`
	ChatID        uint   `gorm:"index;not null"`
	MemberID      uint   `gorm:"index;not null"`
	TelegramPhoto string `gorm:"not null"`
	Caption       *string
	TimesAccessed int `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for Photo
func (Photo) TableName() string {
	return "photos"
}

// Validate checks required fields before save
func (p *Photo) Validate() error {
	if p.TelegramPhoto == "" {
		return &storage.ValidationError{Messages: []string{"Telegram photo can't be blank"}}
	}
	return nil
}
