package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kindergarten-canvas/backend/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory on disk
	baseURL  string // URL the root directory is served from
}

// NewLocalStorage creates basePath if needed. Files are addressed as
// baseURL/<folder>/<name>.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// cleanFolder keeps folder inside the storage root.
func cleanFolder(folder string) (string, error) {
	folder = path.Clean("/" + strings.ReplaceAll(folder, "\\", "/"))
	folder = strings.TrimPrefix(folder, "/")
	if folder == "." {
		folder = ""
	}
	if strings.Contains(folder, "..") {
		return "", fmt.Errorf("invalid folder %q", folder)
	}
	return folder, nil
}

// Save implements FileStorage.
func (ls *LocalStorage) Save(ctx context.Context, r io.Reader, folder, ext string) (*StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String()
	dstPath := filepath.Join(dir, name+ext)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}

	size, err := io.Copy(dst, r)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	publicID := path.Join(folder, name)
	stored := &StoredFile{
		URL:      ls.baseURL + "/" + publicID + ext,
		PublicID: publicID,
		Path:     dstPath,
		Size:     size,
	}

	logger.Info().Str("public_id", publicID).Int64("size", size).Msg("File saved successfully")
	return stored, nil
}
