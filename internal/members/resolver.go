package members

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatPayload is the conversation part of an inbound update
type ChatPayload struct {
	ID    int64
	Title string
}

// UserPayload is the sender (or participant) part of an inbound update
type UserPayload struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// Resolver reconciles platform payloads into durable Chat and Member rows.
// Creation paths are upserts so concurrent first-sight events for the same
// external id cannot produce duplicate rows.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a new identity resolver
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Chat returns the Chat for a conversation payload, creating it if absent,
// and refreshes the title on every call.
func (r *Resolver) Chat(ctx context.Context, p ChatPayload) (*Chat, error) {
	var chat Chat
	err := r.db.WithContext(ctx).
		Where("telegram_chat = ?", p.ID).
		First(&chat).Error

	if err == gorm.ErrRecordNotFound {
		chat = Chat{TelegramChat: p.ID, Title: p.Title}
		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "telegram_chat"}},
				DoNothing: true,
			}).
			Create(&chat)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to create chat: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race, another event created it first
			if err := r.db.WithContext(ctx).
				Where("telegram_chat = ?", p.ID).
				First(&chat).Error; err != nil {
				return nil, fmt.Errorf("failed to load chat after conflict: %w", err)
			}
		} else {
			return &chat, nil
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	if chat.Title != p.Title {
		chat.Title = p.Title
		if err := r.db.WithContext(ctx).
			Model(&chat).
			Update("title", p.Title).Error; err != nil {
			return nil, fmt.Errorf("failed to refresh chat title: %w", err)
		}
	}

	return &chat, nil
}

// Sender resolves a user payload into a Member. Bots resolve to nil.
// Resolution order: stable id, then normalized username (adopting the id
// onto that row), then a fresh row. Known names are refreshed from
// non-empty payload fields and never erased by empty ones.
//
// A save failure after resolution still returns the member so the caller
// can keep processing; the error is meant for a user-visible warning.
func (r *Resolver) Sender(ctx context.Context, p UserPayload) (*Member, error) {
	if p.IsBot {
		return nil, nil
	}

	username := strings.ToLower(p.Username)

	member, err := r.findByTelegramUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if member == nil && username != "" {
		member, err = r.findByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if member != nil && p.ID != 0 {
			// The row was created from a username-only sighting, adopt the id
			member.TelegramUser = &p.ID
		}
	}

	if member == nil {
		member = &Member{}
		if p.ID != 0 {
			member.TelegramUser = &p.ID
		}
		applyPayload(member, p, username)

		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "telegram_user"}},
				DoNothing: true,
			}).
			Create(member)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to create member: %w", res.Error)
		}
		if res.RowsAffected == 0 && p.ID != 0 {
			// Lost the race on first sight of this id
			member, err = r.findByTelegramUser(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			if member == nil {
				return nil, fmt.Errorf("member vanished after upsert conflict for id %d", p.ID)
			}
		} else {
			return member, nil
		}
	}

	applyPayload(member, p, username)
	if err := r.db.WithContext(ctx).Save(member).Error; err != nil {
		return member, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

func (r *Resolver) findByTelegramUser(ctx context.Context, id int64) (*Member, error) {
	if id == 0 {
		return nil, nil
	}
	var member Member
	err := r.db.WithContext(ctx).
		Where("telegram_user = ?", id).
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member by id: %w", err)
	}
	return &member, nil
}

func (r *Resolver) findByUsername(ctx context.Context, username string) (*Member, error) {
	var member Member
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&member).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up member by username: %w", err)
	}
	return &member, nil
}

// applyPayload refreshes identifying fields from non-empty payload values
func applyPayload(m *Member, p UserPayload, username string) {
	if username != "" {
		m.Username = &username
	}
	if p.FirstName != "" {
		first := p.FirstName
		m.FirstName = &first
	}
	if p.LastName != "" {
		last := p.LastName
		m.LastName = &last
	}
}

// EnsureMembership links a member to a chat idempotently. It reports
// whether a new link was created.
func (r *Resolver) EnsureMembership(ctx context.Context, chat *Chat, member *Member) (bool, error) {
	membership := ChatMembership{ChatID: chat.ID, MemberID: member.ID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}, {Name: "member_id"}},
			DoNothing: true,
		}).
		Create(&membership)
	if res.Error != nil {
		return false, fmt.Errorf("failed to link member to chat: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
