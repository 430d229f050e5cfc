package filestorage

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
)

var (
	// ErrFileRejected is returned for uploads that fail size or type checks
	ErrFileRejected = errors.New("file rejected")
	// ErrFileNotFound is returned when a stored reference no longer resolves to a file
	ErrFileNotFound = errors.New("file not found")
)

// Uploader stores applicant documents and returns an opaque URL
type Uploader interface {
	// Upload stores the file under folder and returns its URL. A nil header is a no-op.
	Upload(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (string, error)

	// Delete removes a previously uploaded file. Unknown files are ignored.
	Delete(ctx context.Context, fileURL string) error
}

// Opener reads back files returned by Upload
type Opener interface {
	Open(ctx context.Context, fileURL string) (io.ReadSeekCloser, error)
}

// Storage is the full document store used by the application service
type Storage interface {
	Uploader
	Opener
}
