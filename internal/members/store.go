package members

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Store handles membership queries scoped to a chat
type Store struct {
	db *gorm.DB
}

// NewStore creates a new member store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OfChat returns all members linked to a chat
func (s *Store) OfChat(ctx context.Context, chatID uint) ([]Member, error) {
	var result []Member
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_memberships ON chat_memberships.member_id = members.id").
		Where("chat_memberships.chat_id = ?", chatID).
		Order("members.id").
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chat members: %w", err)
	}
	return result, nil
}

// InChatByTelegramUser finds a chat's member by platform user id
func (s *Store) InChatByTelegramUser(ctx context.Context, chatID uint, telegramUser int64) (*Member, error) {
	if telegramUser == 0 {
		return nil, nil
	}
	var member Member
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_memberships ON chat_memberships.member_id = members.id").
		Where("chat_memberships.chat_id = ? AND members.telegram_user = ?", chatID, telegramUser).
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat member by id: %w", err)
	}
	return &member, nil
}

// InChatByUsername finds a chat's member by normalized username
func (s *Store) InChatByUsername(ctx context.Context, chatID uint, username string) (*Member, error) {
	if username == "" {
		return nil, nil
	}
	var member Member
	err := s.db.WithContext(ctx).
		Joins("JOIN chat_memberships ON chat_memberships.member_id = members.id").
		Where("chat_memberships.chat_id = ? AND members.username = ?", chatID, strings.ToLower(username)).
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat member by username: %w", err)
	}
	return &member, nil
}

// Unlink removes a member from a chat. It reports whether a link existed.
func (s *Store) Unlink(ctx context.Context, chatID, memberID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("chat_id = ? AND member_id = ?", chatID, memberID).
		Delete(&ChatMembership{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to unlink member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IncrementSummons bumps the summon counter on a membership
func (s *Store) IncrementSummons(ctx context.Context, chatID, memberID uint) error {
	err := s.db.WithContext(ctx).
		Model(&ChatMembership{}).
		Where("chat_id = ? AND member_id = ?", chatID, memberID).
		UpdateColumn("summons_performed", gorm.Expr("summons_performed + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("failed to increment summons: %w", err)
	}
	return nil
}

// SetQuotesEnabled flips the daily-quotes flag on a chat
func (s *Store) SetQuotesEnabled(ctx context.Context, chatID uint, enabled bool) error {
	err := s.db.WithContext(ctx).
		Model(&Chat{}).
		Where("id = ?", chatID).
		Update("quotes_enabled", enabled).Error
	if err != nil {
		return fmt.Errorf("failed to update quotes flag: %w", err)
	}
	return nil
}
