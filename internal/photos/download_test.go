package photos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	data string
	ext  string
	err  error
}

func (f *fakeDownloader) DownloadFile(_ context.Context, _ string) (io.ReadCloser, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return io.NopCloser(strings.NewReader(f.data)), f.ext, nil
}

func TestFinalizerDownload(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	finalizer := NewFinalizer(&fakeDownloader{data: "image-bytes", ext: "png"}, dir, logger)

	photo := &Photo{ID: 7, ChatID: 1, MemberID: 1, TelegramPhoto: "file-7"}
	require.NoError(t, finalizer.Download(context.Background(), -100123, photo))

	path := filepath.Join(dir, "-100123", "7.png")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestFinalizerDownloadFailureReportsError(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	finalizer := NewFinalizer(&fakeDownloader{err: fmt.Errorf("network down")}, dir, logger)

	photo := &Photo{ID: 7, ChatID: 1, MemberID: 1, TelegramPhoto: "file-7"}
	err := finalizer.Download(context.Background(), -100123, photo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
