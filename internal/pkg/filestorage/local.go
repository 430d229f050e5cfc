package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/recruitportal/internal/pkg/logger"
)

// MaxUploadSize caps a single CV or portfolio upload
const MaxUploadSize = 10 << 20

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // Prefix of the references handed out by Upload
}

// NewLocalStorage creates a new LocalStorage instance.
// baseURL is optional and only prefixes the returned references.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// Upload saves a file into the folder subdirectory
func (ls *LocalStorage) Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("%w: unsupported file type %q", ErrFileRejected, ext)
	}
	if fileHeader.Size > MaxUploadSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrFileRejected, fileHeader.Filename, MaxUploadSize)
	}

	folder = filepath.Base(filepath.Clean("/" + folder))
	if folder == "/" || folder == "." {
		folder = ""
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir := filepath.Join(ls.basePath, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	// Generate a unique filename to prevent collisions
	uniqueFilename := uuid.New().String() + ext
	dstPath := filepath.Join(dir, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, io.LimitReader(file, MaxUploadSize+1)); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	rel := uniqueFilename
	if folder != "" {
		rel = folder + "/" + uniqueFilename
	}

	accessiblePath := "uploads/" + rel
	if ls.baseURL != "" {
		accessiblePath = strings.TrimRight(ls.baseURL, "/") + "/uploads/" + rel
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", rel).Msg("File saved successfully")
	return accessiblePath, nil
}

// Delete removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}

	physicalPath := ls.fullPath(fileURL)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", fileURL)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// Open returns the content of a file previously returned by Upload. Documents
// are only reachable through authenticated handlers that call this.
func (ls *LocalStorage) Open(ctx context.Context, fileURL string) (io.ReadSeekCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	physicalPath := ls.fullPath(fileURL)
	if physicalPath == "" {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileURL)
	}

	f, err := os.Open(physicalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileURL)
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to open stored file")
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// fullPath maps a URL returned by Upload back onto the filesystem
func (ls *LocalStorage) fullPath(fileURL string) string {
	idx := strings.LastIndex(fileURL, "uploads/")
	if idx < 0 {
		return ""
	}
	rel := filepath.Clean("/" + fileURL[idx+len("uploads/"):])
	if rel == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, rel)
}
