package domain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
)

// Image is the client-side record of one image held by the store.
// url is always absolute.
type Image struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	UploadedAt string `json:"uploadedAt"`
}

// File is one blob handed to an upload. Type is the declared MIME type.
type File struct {
	Name string
	Type string
	Size int64
	Open func() (io.ReadCloser, error)
}

// IsImage reports whether the declared type is an image type.
func (f File) IsImage() bool {
	return strings.HasPrefix(f.Type, "image/")
}

// BytesFile wraps an in-memory payload as a File.
func BytesFile(name, mimeType string, data []byte) File {
	return File{
		Name: name,
		Type: mimeType,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

var ErrNoFiles = errors.New("no files to upload")

// ImageService is the REST contract of the image store.
type ImageService interface {
	// Upload sends every file in one multipart request and returns the
	// created records in server order.
	Upload(ctx context.Context, files []File) ([]Image, error)
	// ListAll never fails; any error yields an empty slice.
	ListAll(ctx context.Context) []Image
	Remove(ctx context.Context, id string) error
}
