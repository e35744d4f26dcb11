package adapter

import (
	"context"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"seungpyo.lee/ImageGallery/pkg/logger"
)

// Saver receives a fully buffered download under its suggested filename.
type Saver interface {
	Save(filename, contentType string, data []byte) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(filename, contentType string, data []byte) error

func (f SaverFunc) Save(filename, contentType string, data []byte) error {
	return f(filename, contentType, data)
}

// Transfer performs single best-effort downloads.
type Transfer struct {
	client *http.Client
	log    *logger.Logger
}

func NewTransfer(client *http.Client, log *logger.Logger) *Transfer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Transfer{client: client, log: log}
}

// DownloadFile fetches url into memory and hands it to dst as filename.
// It never returns an error; false means nothing was saved.
func (t *Transfer) DownloadFile(ctx context.Context, url, filename string, dst Saver) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.log.Error("download failed", "url", url, "error", err)
		return false
	}
	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error("download failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		t.log.Error("download failed", "url", url, "status", resp.StatusCode)
		return false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.log.Error("download failed", "url", url, "error", err)
		return false
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	if err := dst.Save(filename, contentType, data); err != nil {
		t.log.Error("failed to save download", "filename", filename, "error", err)
		return false
	}
	t.log.Debug("download saved", "filename", filename)
	return true
}
