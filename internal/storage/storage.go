package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUnsupportedImage is returned for uploads that are not a known image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

// Image describes one uploaded header image.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service stores post header images and returns the URL readers fetch them from.
type Service interface {
	UploadImage(ctx context.Context, img Image) (string, error)
}
