package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldmed/fieldsales-api/internal/config"
	"github.com/fieldmed/fieldsales-api/internal/storage"
)

// Compile-time check that both backends satisfy the Storage interface.
func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
}

func TestNewLocalStorage_CreatesBaseDirectory(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "attachments")

	ls, err := storage.NewLocalStorage(basePath)
	require.NoError(t, err)
	assert.NotNil(t, ls)

	info, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_Upload(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
	}{
		{
			name:        "clinic photo",
			filename:    "clinic-front.jpg",
			contentType: "image/jpeg",
			content:     []byte{0xFF, 0xD8, 0xFF, 0xE0},
		},
		{
			name:        "voice note",
			filename:    "visit-note.m4a",
			contentType: "audio/mp4",
			content:     bytes.Repeat([]byte{0x01}, 64),
		},
		{
			name:        "signed delivery note",
			filename:    "delivery note signed.pdf",
			contentType: "application/pdf",
			content:     []byte("%PDF-1.4 stub"),
		},
		{
			name:        "empty attachment",
			filename:    "empty.txt",
			contentType: "text/plain",
			content:     []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storagePath, size, err := ls.Upload(context.Background(), tt.filename, tt.contentType, bytes.NewReader(tt.content))

			require.NoError(t, err)
			assert.NotEmpty(t, storagePath)
			assert.Equal(t, int64(len(tt.content)), size)
			assert.Equal(t, filepath.Ext(tt.filename), filepath.Ext(storagePath))
		})
	}
}

func TestLocalStorage_DownloadRoundtrip(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := bytes.Repeat([]byte("visit"), 2048)
	storagePath, size, err := ls.Upload(context.Background(), "photo.jpg", "image/jpeg", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)

	reader, err := ls.Download(context.Background(), storagePath)
	require.NoError(t, err)
	defer reader.Close()

	downloaded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, downloaded)
}

func TestLocalStorage_Download_Missing(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	reader, err := ls.Download(context.Background(), "aa/bb/missing.jpg")

	assert.Error(t, err)
	assert.Nil(t, reader)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalStorage_Delete_Idempotent(t *testing.T) {
	tempDir := t.TempDir()
	ls, err := storage.NewLocalStorage(tempDir)
	require.NoError(t, err)

	storagePath, _, err := ls.Upload(context.Background(), "remove.pdf", "application/pdf", bytes.NewReader([]byte("gone soon")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(context.Background(), storagePath))

	_, err = os.Stat(filepath.Join(tempDir, storagePath))
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op, not an error
	assert.NoError(t, ls.Delete(context.Background(), storagePath))
}

func TestLocalStorage_UniquePathsForSameFilename(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		storagePath, _, err := ls.Upload(context.Background(), "photo.jpg", "image/jpeg", bytes.NewReader([]byte("dup")))
		require.NoError(t, err)
		assert.False(t, seen[storagePath], "storage path reused: %s", storagePath)
		seen[storagePath] = true
	}
	assert.Len(t, seen, 5)
}

func TestNewStorage_LocalMode(t *testing.T) {
	cfg := &config.StorageConfig{
		Mode:          "local",
		LocalBasePath: filepath.Join(t.TempDir(), "attachments"),
	}

	s, err := storage.NewStorage(cfg, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, (*storage.LocalStorage)(nil), s)
}

func TestNewStorage_CloudModeRequiresConnectionString(t *testing.T) {
	cfg := &config.StorageConfig{Mode: "cloud"}

	s, err := storage.NewStorage(cfg, zap.NewNop())

	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestNewStorage_UnsupportedMode(t *testing.T) {
	cfg := &config.StorageConfig{Mode: "ftp"}

	s, err := storage.NewStorage(cfg, zap.NewNop())

	assert.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "unsupported storage mode")
}
