package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/memoriabot/memoria/internal/members"
	"github.com/memoriabot/memoria/internal/photos"
	"github.com/memoriabot/memoria/internal/quotes"
	"github.com/memoriabot/memoria/internal/session"
	"github.com/memoriabot/memoria/internal/storage"
)

// env carries the resolved identities a command runs against
type env struct {
	chat   *members.Chat
	sender *members.Member
	msg    *models.Message
	key    session.Key
}

type handlerFunc func(ctx context.Context, e *env, args string) error

func (r *Router) buildCommands() map[string]handlerFunc {
	specs := []struct {
		name    string
		aliases []string
		fn      handlerFunc
	}{
		{"sendphoto", []string{"sp"}, r.cmdSendPhoto},
		{"getphoto", []string{"gp"}, r.cmdGetPhoto},
		{"sendquote", []string{"sq"}, r.cmdSendQuote},
		{"getquote", []string{"gq"}, r.cmdGetQuote},
		{"quote", nil, r.cmdQuote},
		{"members", nil, r.cmdMembers},
		{"summon", []string{"s"}, r.cmdSummon},
		{"quotes", nil, r.cmdQuotes},
		{"8ball", nil, r.cmdEightBall},
		{"luck", nil, r.cmdLuck},
	}

	commands := make(map[string]handlerFunc)
	for _, spec := range specs {
		commands[spec.name] = spec.fn
		for _, alias := range spec.aliases {
			commands[alias] = spec.fn
		}
	}
	return commands
}

// cmdSendPhoto saves the photo cached by the sender's previous message,
// with the arguments as an optional caption.
func (r *Router) cmdSendPhoto(ctx context.Context, e *env, args string) error {
	fileID, ok := r.sessions.Photo(e.key)
	if !ok {
		r.send(ctx, e.chat, "🧐 You didn't send a photo!")
		return nil
	}

	photo := &photos.Photo{
		ChatID:        e.chat.ID,
		MemberID:      e.sender.ID,
		TelegramPhoto: fileID,
	}
	if args != "" {
		caption := args
		photo.Caption = &caption
	}

	if err := r.photos.Create(ctx, photo); err != nil {
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			r.send(ctx, e.chat, fmt.Sprintf("🤬 Failed to save photo: %s", verr.FullMessages()))
			return nil
		}
		return err
	}

	messageID, err := r.client.SendHTML(ctx, e.chat.TelegramChat, "🌄 Your photo is being saved...")
	if err != nil {
		return err
	}

	r.sessions.ClearPhoto(e.key)

	if r.finalizer == nil {
		return r.client.EditHTML(ctx, e.chat.TelegramChat, messageID, "🌄 Your photo was saved!")
	}

	// Finalization runs off the reply path. Only a successful download
	// upgrades the acknowledgment; a failure leaves it as is.
	chatID := e.chat.TelegramChat
	go func() {
		if err := r.finalizer.Download(ctx, chatID, photo); err != nil {
			return
		}
		if err := r.client.EditHTML(ctx, chatID, messageID, "🌄 Your photo was saved!"); err != nil {
			r.logger.Error("photo save edit failed", "chat_id", chatID, "error", err)
		}
	}()
	return nil
}

// cmdGetPhoto sends back a random saved photo
func (r *Router) cmdGetPhoto(ctx context.Context, e *env, _ string) error {
	photo, err := r.photos.RandomForChat(ctx, e.chat.ID)
	if err != nil {
		return err
	}
	if photo == nil {
		r.send(ctx, e.chat, "😭 You don't have any photos! Use /sendphoto to add some.")
		return nil
	}

	caption := ""
	if photo.Caption != nil {
		caption = *photo.Caption
	}
	return r.client.SendPhoto(ctx, e.chat.TelegramChat, photo.TelegramPhoto, caption)
}

// cmdSendQuote saves a quote. The arguments are split on && into content,
// author, and optional context.
func (r *Router) cmdSendQuote(ctx context.Context, e *env, args string) error {
	tokens := strings.Split(args, "&&")
	if len(tokens) < 2 || len(tokens) > 3 {
		r.send(ctx, e.chat, "🧐 Usage: /sendquote [quote] && [author] && [optional context]")
		return nil
	}
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}

	quote := &quotes.Quote{
		ChatID:   e.chat.ID,
		MemberID: e.sender.ID,
		Content:  tokens[0],
		Author:   tokens[1],
	}
	if len(tokens) == 3 {
		quoteContext := tokens[2]
		quote.Context = &quoteContext
	}

	if err := r.quotes.Create(ctx, quote); err != nil {
		var verr *storage.ValidationError
		if errors.As(err, &verr) {
			r.send(ctx, e.chat, fmt.Sprintf("🤬 Failed to save quote: %s", verr.FullMessages()))
			return nil
		}
		return err
	}

	r.send(ctx, e.chat, "👌 Your quote was saved!")
	return nil
}

// cmdGetQuote replies with a random saved quote, optionally filtered by
// author. One time in ten it asks the generator for a synthetic quote
// seeded with recent chat text instead.
func (r *Router) cmdGetQuote(ctx context.Context, e *env, args string) error {
	author := strings.TrimSpace(args)

	if r.generator != nil && r.randInt(10) > 8 {
		if text, err := r.generateQuote(ctx, e, author); err == nil {
			r.send(ctx, e.chat, text)
			return nil
		} else {
			r.logger.Warn("quote generation failed, falling back to stored", "error", err)
		}
	}

	quote, err := r.quotes.RandomForChat(ctx, e.chat.ID, author)
	if err != nil {
		return err
	}
	if quote == nil {
		suffix := ""
		if author != "" {
			suffix = fmt.Sprintf(" by <b>%s</b>", html.EscapeString(author))
		}
		r.send(ctx, e.chat, fmt.Sprintf("😭 You don't have any quotes%s! Use /sendquote to add some.", suffix))
		return nil
	}

	r.send(ctx, e.chat, quotes.Format(quote))
	return nil
}

func (r *Router) generateQuote(ctx context.Context, e *env, author string) (string, error) {
	var seed []string
	if r.archive != nil {
		var err error
		seed, err = r.archive.RecentTexts(ctx, e.chat.TelegramChat, r.seedLines)
		if err != nil {
			return "", err
		}
	}

	text, err := r.generator.Generate(ctx, e.chat.TelegramChat, author, seed)
	if err != nil {
		return "", err
	}
	return quotes.FormatGenerated(text, author), nil
}

// cmdQuote is shorthand: with arguments it saves, without it retrieves
func (r *Router) cmdQuote(ctx context.Context, e *env, args string) error {
	if strings.TrimSpace(args) == "" {
		return r.cmdGetQuote(ctx, e, "")
	}
	return r.cmdSendQuote(ctx, e, args)
}

// cmdMembers lists everyone linked to the chat
func (r *Router) cmdMembers(ctx context.Context, e *env, _ string) error {
	list, err := r.members.OfChat(ctx, e.chat.ID)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(list))
	for i := range list {
		names = append(names, boldName(&list[i]))
	}
	sort.Strings(names)

	r.send(ctx, e.chat, fmt.Sprintf("📜 Chat group members: %s", toSentence(names)))
	return nil
}

// cmdSummon pings every summonable member with an optional message.
// Members without a username and the sender are left out.
func (r *Router) cmdSummon(ctx context.Context, e *env, args string) error {
	if err := r.members.IncrementSummons(ctx, e.chat.ID, e.sender.ID); err != nil {
		r.logger.Error("summon counter update failed", "member", e.sender.ID, "error", err)
	}

	list, err := r.members.OfChat(ctx, e.chat.ID)
	if err != nil {
		return err
	}

	senderUsername := strings.ToLower(e.msg.From.Username)
	handles := make([]string, 0, len(list))
	for i := range list {
		m := &list[i]
		if !m.HasUsername() || *m.Username == senderUsername {
			continue
		}
		handles = append(handles, "@"+*m.Username)
	}
	sort.Strings(handles)

	caller := e.msg.From.FirstName
	if caller == "" {
		caller = e.msg.From.Username
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📣 <b>%s</b>\n", html.EscapeString(caller)))
	if args == "" {
		sb.WriteString("\n")
	} else {
		sb.WriteString(strings.TrimSpace(args))
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.Join(handles, ", "))

	r.send(ctx, e.chat, sb.String())
	return nil
}

// cmdQuotes toggles the chat's quotes flag
func (r *Router) cmdQuotes(ctx context.Context, e *env, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		r.send(ctx, e.chat, "🧐 Usage: /quotes [enable | disable]")
		return nil
	}

	switch fields[0] {
	case "enable":
		if err := r.members.SetQuotesEnabled(ctx, e.chat.ID, true); err != nil {
			return err
		}
		r.send(ctx, e.chat, "🙌 Quotes enabled!")
	case "disable":
		if err := r.members.SetQuotesEnabled(ctx, e.chat.ID, false); err != nil {
			return err
		}
		r.send(ctx, e.chat, "🤐 Quotes disabled!")
	default:
		r.send(ctx, e.chat, "🧐 Usage: /quotes [enable | disable]")
	}
	return nil
}

// cmdEightBall replies with a random configured answer
func (r *Router) cmdEightBall(ctx context.Context, e *env, _ string) error {
	answer, err := r.eightball.RandomForChat(ctx, e.chat.ID)
	if err != nil {
		return err
	}
	if answer == nil {
		r.send(ctx, e.chat, "🤐 <i>You've got no answers, guess you're SOL.</i>")
		return nil
	}
	r.send(ctx, e.chat, fmt.Sprintf("<i>%s</i>", html.EscapeString(answer.Answer)))
	return nil
}

// cmdLuck lists members ranked by their luck score
func (r *Router) cmdLuck(ctx context.Context, e *env, _ string) error {
	list, err := r.members.OfChat(ctx, e.chat.ID)
	if err != nil {
		return err
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Luck > list[j].Luck
	})

	lines := make([]string, 0, len(list)+1)
	lines = append(lines, "🍀 <b>Luck Statistics</b>")
	for i := range list {
		lines = append(lines, fmt.Sprintf("<b>%d:</b> %s", list[i].Luck, html.EscapeString(list[i].DisplayName())))
	}

	r.send(ctx, e.chat, strings.Join(lines, "\n"))
	return nil
}
