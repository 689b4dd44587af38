package quotes

import (
	"time"

	"github.com/memoriabot/memoria/internal/storage"
)

// Quote represents a saved quote. Author is a free-text attribution, not
// necessarily a tracked member; MemberID is whoever saved it.
type Quote struct {
	ID                uint   `gorm:"primaryKey"`
	ChatID            uint   `gorm:"index;not null"`
	MemberID          uint   `gorm:"index;not null"`
	Content           string `gorm:"not null"`
	Author            string `gorm:"not null"`
	Context           *string
	Longitude         *float64 `gorm:"type:numeric(12,7)"`
	Latitude          *float64 `gorm:"type:numeric(12,7)"`
	LocationConfirmed bool     `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for Quote
func (Quote) TableName() string {
	return "quotes"
}

// Validate checks required fields before save
func (q *Quote) Validate() error {
	var messages []string
	if q.Content == "" {
		messages = append(messages, "Content can't be blank")
	}
	if q.Author == "" {
		messages = append(messages, "Author can't be blank")
	}
	if len(messages) > 0 {
		return &storage.ValidationError{Messages: messages}
	}
	return nil
}
