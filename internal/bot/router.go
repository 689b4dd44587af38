// Package bot routes inbound updates through identity reconciliation,
// session bookkeeping, and command dispatch.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/memoriabot/memoria/internal/archive"
	"github.com/memoriabot/memoria/internal/eightball"
	"github.com/memoriabot/memoria/internal/members"
	"github.com/memoriabot/memoria/internal/photos"
	"github.com/memoriabot/memoria/internal/quotes"
	"github.com/memoriabot/memoria/internal/session"
	"github.com/memoriabot/memoria/internal/telegram"
)

// Deps bundles the collaborators the router dispatches into
type Deps struct {
	Client    telegram.Client
	Resolver  *members.Resolver
	Members   *members.Store
	Quotes    *quotes.Store
	Photos    *photos.Store
	Finalizer *photos.Finalizer
	EightBall *eightball.Store
	Archive   *archive.Service
	Sessions  *session.Store
	Generator quotes.Generator
}

// Config holds router configuration
type Config struct {
	BotUsername    string
	SummonPrefixes []string
	AllowedChatIDs []int64
	SeedLines      int
}

// Router is the update pipeline: archive, resolve identities, maintain
// membership, collapse pending session state, then dispatch commands.
type Router struct {
	client    telegram.Client
	resolver  *members.Resolver
	members   *members.Store
	quotes    *quotes.Store
	photos    *photos.Store
	finalizer *photos.Finalizer
	eightball *eightball.Store
	archive   *archive.Service
	sessions  *session.Store
	generator quotes.Generator

	commands       map[string]handlerFunc
	prefixes       []string
	allowedChatIDs map[int64]bool
	seedLines      int
	logger         *slog.Logger

	// injectable for deterministic tests
	randInt func(n int) int
}

// NewRouter creates a new update router
func NewRouter(deps Deps, cfg Config, logger *slog.Logger) *Router {
	allowed := make(map[int64]bool, len(cfg.AllowedChatIDs))
	for _, id := range cfg.AllowedChatIDs {
		allowed[id] = true
	}

	prefixes := make([]string, 0, len(cfg.SummonPrefixes)+1)
	for _, prefix := range cfg.SummonPrefixes {
		prefixes = append(prefixes, strings.ToLower(prefix))
	}
	if cfg.BotUsername != "" {
		prefixes = append(prefixes, "@"+strings.ToLower(cfg.BotUsername))
	}

	seedLines := cfg.SeedLines
	if seedLines <= 0 {
		seedLines = 50
	}

	r := &Router{
		client:         deps.Client,
		resolver:       deps.Resolver,
		members:        deps.Members,
		quotes:         deps.Quotes,
		photos:         deps.Photos,
		finalizer:      deps.Finalizer,
		eightball:      deps.EightBall,
		archive:        deps.Archive,
		sessions:       deps.Sessions,
		generator:      deps.Generator,
		prefixes:       prefixes,
		allowedChatIDs: allowed,
		seedLines:      seedLines,
		logger:         logger,
		randInt:        rand.Intn,
	}
	r.commands = r.buildCommands()
	return r
}

// HandleUpdate processes one inbound update end to end. Errors are
// logged, never returned: a failing update must not wedge the poller.
func (r *Router) HandleUpdate(ctx context.Context, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg == nil || msg.From == nil {
		return
	}

	if !r.chatAllowed(msg.Chat.ID) {
		r.logger.Debug("ignoring message from unauthorized chat", "chat_id", msg.Chat.ID)
		return
	}

	r.archiveMessage(ctx, msg)

	chat, err := r.resolver.Chat(ctx, members.ChatPayload{ID: msg.Chat.ID, Title: msg.Chat.Title})
	if err != nil {
		r.logger.Error("chat resolution failed", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	sender := r.resolveSender(ctx, chat, msg)
	r.addNewMembers(ctx, chat, msg)
	r.removeLeftMember(ctx, chat, msg)

	if sender == nil {
		return
	}

	key := session.Key{ChatID: chat.ID, MemberID: sender.ID}

	if name, args, ok := splitCommand(msg.Text); ok {
		handler, exists := r.commands[name]
		if !exists {
			r.logger.Debug("unknown command", "command", name)
			return
		}
		e := &env{chat: chat, sender: sender, msg: msg, key: key}
		r.logger.Info("executing command", "command", name, "chat_id", msg.Chat.ID)
		if err := handler(ctx, e, args); err != nil {
			r.logger.Error("command execution failed", "command", name, "error", err)
		}
		return
	}

	r.handleMessage(ctx, chat, sender, key, msg)
}

// handleMessage is the plain (non-command) message path. Any such message
// collapses pending state: the photo slot is dropped and the sender's
// latest unconfirmed quote settles without a location, unless this very
// message carries one.
func (r *Router) handleMessage(ctx context.Context, chat *members.Chat, sender *members.Member, key session.Key, msg *models.Message) {
	r.sessions.ClearPhoto(key)

	latest, err := r.quotes.LatestUnconfirmed(ctx, chat.ID, sender.ID)
	if err != nil {
		r.logger.Error("unconfirmed quote lookup failed", "error", err)
	}
	if latest != nil {
		if err := r.quotes.Confirm(ctx, latest); err != nil {
			r.logger.Error("quote confirmation failed", "quote", latest.ID, "error", err)
		}
	}

	if len(msg.Photo) > 0 {
		largest := largestPhoto(msg.Photo)
		r.sessions.SetPhoto(key, largest.FileID)
	}

	if msg.Text != "" {
		lower := strings.ToLower(msg.Text)
		for _, prefix := range r.prefixes {
			if strings.HasPrefix(lower, prefix) {
				e := &env{chat: chat, sender: sender, msg: msg, key: key}
				if err := r.cmdSummon(ctx, e, strings.TrimSpace(msg.Text[len(prefix):])); err != nil {
					r.logger.Error("summon failed", "error", err)
				}
				return
			}
		}
	}

	if msg.Location != nil && latest != nil {
		if err := r.quotes.AttachLocation(ctx, latest, msg.Location.Longitude, msg.Location.Latitude); err != nil {
			r.logger.Error("location attach failed", "quote", latest.ID, "error", err)
			return
		}
		r.send(ctx, chat, "🗺 A location was added to your latest quote!")
	}
}

// resolveSender reconciles the message sender and links them to the chat,
// announcing first-time members. Bots resolve to nil.
func (r *Router) resolveSender(ctx context.Context, chat *members.Chat, msg *models.Message) *members.Member {
	member, err := r.resolver.Sender(ctx, userPayload(msg.From))
	if member == nil {
		if err != nil {
			r.logger.Error("sender resolution failed", "user_id", msg.From.ID, "error", err)
		}
		return nil
	}

	added, linkErr := r.resolver.EnsureMembership(ctx, chat, member)
	if linkErr != nil {
		r.logger.Error("membership link failed", "member", member.ID, "error", linkErr)
	}
	if added {
		text := fmt.Sprintf("❤️ %s was added to the chat group.", boldName(member))
		if !member.HasUsername() {
			text += " (They should add a username before they can be included in summons.)"
		}
		r.send(ctx, chat, text)
	}

	if err != nil {
		// Resolution succeeded but the refresh didn't stick; warn and keep going
		r.logger.Warn("member refresh failed", "member", member.ID, "error", err)
		r.send(ctx, chat, fmt.Sprintf("⚠️ Failed to update %s. (%s)", msg.From.Username, err))
	}

	return member
}

// addNewMembers links users announced by a service message and greets
// them. Members without a username get a footnote marker since summons
// cannot reach them.
func (r *Router) addNewMembers(ctx context.Context, chat *members.Chat, msg *models.Message) {
	if len(msg.NewChatMembers) == 0 {
		return
	}

	var names []string
	noUsername := false

	for i := range msg.NewChatMembers {
		user := &msg.NewChatMembers[i]
		if user.IsBot {
			continue
		}

		member, err := r.resolver.Sender(ctx, userPayload(user))
		if member == nil {
			if err != nil {
				r.logger.Error("new member resolution failed", "user_id", user.ID, "error", err)
			}
			continue
		}
		if _, err := r.resolver.EnsureMembership(ctx, chat, member); err != nil {
			r.logger.Error("new member link failed", "member", member.ID, "error", err)
			continue
		}

		name := boldName(member)
		if !member.HasUsername() {
			name += "<b>*</b>"
			noUsername = true
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return
	}

	verb := "were"
	if len(names) == 1 {
		verb = "was"
	}
	text := fmt.Sprintf("❤️ %s %s added to the chat group.", toSentence(names), verb)
	if noUsername {
		text += "\n\n<b>*</b> should add a username before they can be included in summons."
	}
	r.send(ctx, chat, text)
}

// removeLeftMember unlinks a departed user. Unknown or unlinked users are
// a silent no-op.
func (r *Router) removeLeftMember(ctx context.Context, chat *members.Chat, msg *models.Message) {
	left := msg.LeftChatMember
	if left == nil || left.IsBot {
		return
	}

	member, err := r.members.InChatByTelegramUser(ctx, chat.ID, left.ID)
	if err != nil {
		r.logger.Error("left member lookup failed", "user_id", left.ID, "error", err)
		return
	}
	if member == nil && left.Username != "" {
		member, err = r.members.InChatByUsername(ctx, chat.ID, left.Username)
		if err != nil {
			r.logger.Error("left member lookup failed", "username", left.Username, "error", err)
			return
		}
	}
	if member == nil {
		return
	}

	removed, err := r.members.Unlink(ctx, chat.ID, member.ID)
	if err != nil {
		r.logger.Error("member unlink failed", "member", member.ID, "error", err)
		return
	}
	if removed {
		r.send(ctx, chat, fmt.Sprintf("💔 %s was removed from the chat group.", boldName(member)))
	}
}

func (r *Router) archiveMessage(ctx context.Context, msg *models.Message) {
	if r.archive == nil {
		return
	}
	err := r.archive.Add(ctx, archive.Message{
		MessageID: int64(msg.ID),
		ChatID:    msg.Chat.ID,
		Date:      int64(msg.Date),
		Text:      msg.Text,
		SenderID:  msg.From.ID,
	})
	if err != nil {
		r.logger.Error("message archival failed", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}

func (r *Router) chatAllowed(chatID int64) bool {
	if len(r.allowedChatIDs) == 0 {
		return true
	}
	return r.allowedChatIDs[chatID]
}

func (r *Router) send(ctx context.Context, chat *members.Chat, text string) {
	if _, err := r.client.SendHTML(ctx, chat.TelegramChat, text); err != nil {
		r.logger.Error("send failed", "chat_id", chat.TelegramChat, "error", err)
	}
}

func userPayload(u *models.User) members.UserPayload {
	return members.UserPayload{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}

// splitCommand extracts the verb and raw argument string from a command
// message. Handles the /verb@botname form.
func splitCommand(text string) (name, args string, ok bool) {
	if len(text) == 0 || text[0] != '/' {
		return "", "", false
	}

	rest := text[1:]
	name = rest
	if i := strings.IndexByte(rest, ' '); i >= 0 {
		name = rest[:i]
		args = strings.TrimSpace(rest[i+1:])
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(name)
	if name == "" {
		return "", "", false
	}
	return name, args, true
}
