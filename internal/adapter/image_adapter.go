package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"seungpyo.lee/ImageGallery/internal/config"
	"seungpyo.lee/ImageGallery/internal/domain"
	"seungpyo.lee/ImageGallery/internal/model"
	"seungpyo.lee/ImageGallery/pkg/logger"
)

const (
	uploadField     = "files"
	maxErrorBody    = 64 << 10
	defaultMimeType = "application/octet-stream"
)

type imageAdapterImpl struct {
	baseURL string
	origin  string
	client  *http.Client
	log     *logger.Logger
}

// NewImageAdapter returns the REST client of the image store. A nil client
// gets one with cfg.RequestTimeout.
func NewImageAdapter(cfg *config.GalleryConfig, client *http.Client, log *logger.Logger) domain.ImageService {
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return &imageAdapterImpl{
		baseURL: cfg.APIBaseURL(),
		origin:  cfg.APIOrigin,
		client:  client,
		log:     log,
	}
}

func (a *imageAdapterImpl) Upload(ctx context.Context, files []domain.File) ([]domain.Image, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	body, contentType, err := encodeFiles(files)
	if err != nil {
		return nil, &domain.UploadError{Message: domain.UploadFailedMessage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/images/upload-multiple", body)
	if err != nil {
		return nil, &domain.UploadError{Message: domain.UploadFailedMessage, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Error("upload request failed", "files", len(files), "error", err)
		return nil, &domain.UploadError{Message: domain.UploadFailedMessage, Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := failureMessage(resp, domain.UploadFailedMessage)
		a.log.Warn("upload rejected", "status", resp.StatusCode, "detail", msg)
		return nil, &domain.UploadError{Message: msg, Status: resp.StatusCode}
	}

	var uploaded []model.ImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return nil, &domain.UploadError{
			Message: domain.UploadFailedMessage,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("failed to parse upload response: %w", err),
		}
	}

	images := make([]domain.Image, 0, len(uploaded))
	for _, img := range uploaded {
		images = append(images, img.ToDomain(a.origin))
	}
	a.log.Info("images uploaded", "sent", len(files), "stored", len(images))
	return images, nil
}

func (a *imageAdapterImpl) ListAll(ctx context.Context) []domain.Image {
	images := []domain.Image{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/images", nil)
	if err != nil {
		a.log.Warn("list request build failed", "error", err)
		return images
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Warn("list request failed", "error", err)
		return images
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		a.log.Warn("list rejected", "status", resp.StatusCode)
		return images
	}

	var list model.ImageListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		a.log.Warn("failed to parse list response", "error", err)
		return images
	}
	for _, img := range list.Images {
		images = append(images, img.ToDomain(a.origin))
	}
	return images
}

func (a *imageAdapterImpl) Remove(ctx context.Context, id string) error {
	target := a.baseURL + "/images/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return &domain.DeleteError{ID: id, Message: domain.DeleteFailedMessage, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.log.Error("delete request failed", "id", id, "error", err)
		return &domain.DeleteError{ID: id, Message: domain.DeleteFailedMessage, Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		msg := failureMessage(resp, domain.DeleteFailedMessage)
		a.log.Warn("delete rejected", "id", id, "status", resp.StatusCode, "detail", msg)
		return &domain.DeleteError{ID: id, Message: msg, Status: resp.StatusCode}
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	a.log.Info("image deleted", "id", id)
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// failureMessage reads the server detail, or returns fallback.
func failureMessage(resp *http.Response, fallback string) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fallback
	}
	if msg := model.DecodeErrorMessage(b); msg != "" {
		return msg
	}
	return fallback
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeFiles builds one multipart body with a "files" part per file. Each
// part keeps the declared content type of its file.
func encodeFiles(files []domain.File) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		if f.Open == nil {
			return nil, "", fmt.Errorf("file %q has no content", f.Name)
		}
		typ := f.Type
		if typ == "" {
			typ = defaultMimeType
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			uploadField, quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", typ)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if err := copyFile(part, f); err != nil {
			return nil, "", fmt.Errorf("failed to read %q: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func copyFile(dst io.Writer, f domain.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(dst, rc)
	return err
}
