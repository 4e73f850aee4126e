package filestorage

import (
	"errors"
	"mime/multipart"
)

// ErrFileNotFound is returned when the backing file for a stored path is missing.
var ErrFileNotFound = errors.New("stored file not found")

// FileStorage defines the interface for blob storage operations.
// Save returns the storage path and the generated identifier for the file;
// the original filename is only used for its extension.
type FileStorage interface {
	// Save stores an uploaded file and returns (storagePath, generatedID)
	Save(fileHeader *multipart.FileHeader) (string, string, error)

	// Delete removes a file from storage. Returns ErrFileNotFound when the
	// backing file is already gone.
	Delete(storagePath string) error

	// Exists reports whether the backing file for a storage path is present
	Exists(storagePath string) bool

	// FullPath returns the full filesystem path for a storage path
	FullPath(storagePath string) string
}
