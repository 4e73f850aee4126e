package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/casportal/casportal/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

// NewLocalStorage creates a new LocalStorage instance rooted at basePath.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Save stores an uploaded file under a generated uuid name, keeping the
// original extension. Returns the relative storage path and the generated id.
func (ls *LocalStorage) Save(fileHeader *multipart.FileHeader) (string, string, error) {
	if fileHeader == nil {
		return "", "", fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	id := uuid.New().String()
	storagePath := id + filepath.Ext(fileHeader.Filename)
	dstPath := filepath.Join(ls.basePath, storagePath)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", storagePath).Msg("File saved")
	return storagePath, id, nil
}

// Delete removes a file from the storage filesystem. Returns ErrFileNotFound
// when the backing file is already gone so callers can decide whether that is
// an error for their flow.
func (ls *LocalStorage) Delete(storagePath string) error {
	if storagePath == "" {
		return ErrFileNotFound
	}

	physicalPath := ls.FullPath(storagePath)
	if physicalPath == "" {
		return fmt.Errorf("invalid storage path: %s", storagePath)
	}

	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		return ErrFileNotFound
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// Exists reports whether the backing file for a storage path is present.
func (ls *LocalStorage) Exists(storagePath string) bool {
	if storagePath == "" {
		return false
	}
	_, err := os.Stat(ls.FullPath(storagePath))
	return err == nil
}

// FullPath returns the full filesystem path for a storage path.
func (ls *LocalStorage) FullPath(storagePath string) string {
	filename := filepath.Base(storagePath)
	if filename == "" || filename == "." || filename == "/" {
		return ""
	}
	return filepath.Join(ls.basePath, filename)
}
