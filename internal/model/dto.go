package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"seungpyo.lee/ImageGallery/internal/domain"
)

// ImageResponse is one image as the store returns it. URL is server-relative.
type ImageResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	UploadedAt string `json:"uploaded_at"`
}

// ImageListResponse is the body of GET /images.
type ImageListResponse struct {
	Images []ImageResponse `json:"images"`
	Total  int             `json:"total"`
}

// ErrorResponse is the failure body of every endpoint. Detail is either a
// string or a list (per-file upload failures, validation errors).
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// FileError is one rejected file of a multi-file upload.
type FileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// ToDomain normalizes the record, resolving a server-relative url against origin.
func (r ImageResponse) ToDomain(origin string) domain.Image {
	return domain.Image{
		ID:         r.ID,
		Name:       r.Name,
		URL:        ResolveURL(origin, r.URL),
		Size:       r.Size,
		Type:       r.Type,
		UploadedAt: r.UploadedAt,
	}
}

// ResolveURL prefixes origin onto a server-relative path. Absolute urls are
// returned unchanged.
func ResolveURL(origin, u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	origin = strings.TrimRight(origin, "/")
	if u != "" && !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return origin + u
}

// Message flattens Detail into one human-readable line. It returns "" when
// the detail is absent or has an unknown shape.
func (e ErrorResponse) Message() string {
	raw := bytes.TrimSpace(e.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if msg := itemMessage(item); msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

func itemMessage(item map[string]interface{}) string {
	str := func(key string) string {
		v, _ := item[key].(string)
		return v
	}
	// per-file upload failure: {filename, error}
	if e := str("error"); e != "" {
		if f := str("filename"); f != "" {
			return f + ": " + e
		}
		return e
	}
	// validation error: {loc, msg, type}
	return str("msg")
}

// DecodeErrorMessage extracts the server detail from a failure body.
func DecodeErrorMessage(body []byte) string {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Message()
}
