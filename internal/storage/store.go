package storage

import (
	"context"
	"errors"
)

var ErrEmptyFile = errors.New("file is empty")

// FileStore uploads images to a hosting provider and returns their public URL.
type FileStore interface {
	UploadFile(ctx context.Context, data []byte, filename string, folder string) (string, error)
}
