package members

import (
	"strings"
	"time"
)

// Chat represents a tracked group conversation
type Chat struct {
	ID            uint  `gorm:"primaryKey"`
	TelegramChat  int64 `gorm:"uniqueIndex;not null"`
	Title         string
	QuotesEnabled bool `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for Chat
func (Chat) TableName() string {
	return "chats"
}

// Member represents a tracked participant, durable across chats.
// TelegramUser is the stable platform id; it may be unknown for members
// first seen through a username-only payload and adopted later.
type Member struct {
	ID           uint    `gorm:"primaryKey"`
	TelegramUser *int64  `gorm:"uniqueIndex"`
	Username     *string `gorm:"index"`
	FirstName    *string
	LastName     *string
	Luck         int `gorm:"not null;default:50"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for Member
func (Member) TableName() string {
	return "members"
}

// HasUsername reports whether the member can be summon-targeted
func (m *Member) HasUsername() bool {
	return m.Username != nil && *m.Username != ""
}

// DisplayName builds the human-readable name: first/last name when known,
// username otherwise.
func (m *Member) DisplayName() string {
	var parts []string
	if m.FirstName != nil && *m.FirstName != "" {
		parts = append(parts, *m.FirstName)
	}
	if m.LastName != nil && *m.LastName != "" {
		parts = append(parts, *m.LastName)
	}

	name := strings.Join(parts, " ")
	if name == "" && m.HasUsername() {
		name = *m.Username
	}
	if name == "" {
		name = "unknown"
	}
	return name
}

// ChatMembership links a Member to a Chat
type ChatMembership struct {
	ID               uint `gorm:"primaryKey"`
	ChatID           uint `gorm:"not null;uniqueIndex:uq_chat_memberships"`
	MemberID         uint `gorm:"not null;uniqueIndex:uq_chat_memberships"`
	SummonsPerformed int  `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for ChatMembership
func (ChatMembership) TableName() string {
	return "chat_memberships"
}
