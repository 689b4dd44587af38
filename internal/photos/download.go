package photos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/memoriabot/memoria/internal/telegram"
)

// Finalizer mirrors saved photos to local disk. Downloads are best effort:
// a failure is logged and the stored record stays authoritative.
type Finalizer struct {
	downloader telegram.FileDownloader
	dir        string
	logger     *slog.Logger
}

// NewFinalizer creates a new photo finalizer writing under dir
func NewFinalizer(downloader telegram.FileDownloader, dir string, logger *slog.Logger) *Finalizer {
	return &Finalizer{
		downloader: downloader,
		dir:        dir,
		logger:     logger,
	}
}

// Download fetches the photo's file and writes it to
// <dir>/<telegram chat id>/<photo id>.<ext>. A single attempt, no retry;
// the failure is logged and returned so the caller can withhold its
// success acknowledgment.
func (f *Finalizer) Download(ctx context.Context, telegramChat int64, photo *Photo) error {
	if err := f.download(ctx, telegramChat, photo); err != nil {
		f.logger.Warn("photo download failed",
			"chat", telegramChat,
			"photo", photo.ID,
			"error", err,
		)
		return err
	}
	return nil
}

func (f *Finalizer) download(ctx context.Context, telegramChat int64, photo *Photo) error {
	body, ext, err := f.downloader.DownloadFile(ctx, photo.TelegramPhoto)
	if err != nil {
		return err
	}
	defer body.Close()

	dir := filepath.Join(f.dir, strconv.FormatInt(telegramChat, 10))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%d.%s", photo.ID, ext))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}
