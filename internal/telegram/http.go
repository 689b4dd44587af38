package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// downloadTimeout bounds the single file-download attempt end to end
const downloadTimeout = time.Minute

// BotClient implements Client and FileDownloader on top of go-telegram/bot
type BotClient struct {
	bot  *bot.Bot
	http *http.Client
}

// NewBotClient wraps an already constructed bot
func NewBotClient(b *bot.Bot) *BotClient {
	return &BotClient{
		bot:  b,
		http: &http.Client{Timeout: downloadTimeout},
	}
}

// SendHTML implements the Client interface
func (c *BotClient) SendHTML(ctx context.Context, chatID int64, text string) (int, error) {
	msg, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// EditHTML implements the Client interface
func (c *BotClient) EditHTML(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := c.bot.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// SendPhoto implements the Client interface
func (c *BotClient) SendPhoto(ctx context.Context, chatID int64, fileID string, caption string) error {
	_, err := c.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileString{Data: fileID},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// DownloadFile implements the FileDownloader interface. The suggested
// extension comes from the remote file path and falls back to "jpg".
func (c *BotClient) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, string, error) {
	file, err := c.bot.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bot.FileDownloadLink(file), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, "", fmt.Errorf("unexpected download status: %s", resp.Status)
	}

	return resp.Body, fileExtension(file.FilePath), nil
}

// fileExtension extracts the extension from a Telegram file path
func fileExtension(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 && i < len(path)-1 {
		return path[i+1:]
	}
	return "jpg"
}

// Ensure BotClient implements both interfaces
var (
	_ Client         = (*BotClient)(nil)
	_ FileDownloader = (*BotClient)(nil)
)
