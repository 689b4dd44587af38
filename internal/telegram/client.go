package telegram

import (
	"context"
	"io"
)

// Client is the outbound surface the update pipeline needs from Telegram.
// Handlers depend on this interface, never on the bot library directly.
type Client interface {
	// SendHTML sends an HTML-formatted message and returns its message ID
	SendHTML(ctx context.Context, chatID int64, text string) (int, error)

	// EditHTML replaces the text of a previously sent message
	EditHTML(ctx context.Context, chatID int64, messageID int, text string) error

	// SendPhoto sends a photo by Telegram file ID with an optional caption
	SendPhoto(ctx context.Context, chatID int64, fileID string, caption string) error
}

// FileDownloader is the file-download collaborator. Given a file reference
// it yields the file bytes and a suggested extension. It may fail; callers
// treat a failure as best-effort.
type FileDownloader interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, string, error)
}
