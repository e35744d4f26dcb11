package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"too large"}`, "too large"},
		{"missing detail", `{}`, ""},
		{"null detail", `{"detail":null}`, ""},
		{"not json", `<html>bad gateway</html>`, ""},
		{
			"per-file failures",
			`{"detail":[{"filename":"a.txt","error":"Invalid file type"},{"filename":"b.png","error":"File 'b.png' already exists"}]}`,
			"a.txt: Invalid file type; b.png: File 'b.png' already exists",
		},
		{
			"validation errors",
			`{"detail":[{"loc":["body","files"],"msg":"field required","type":"value_error.missing"}]}`,
			"field required",
		},
		{"unknown object", `{"detail":{"code":7}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeErrorMessage([]byte(tt.body)))
		})
	}
}

func TestResolveURL(t *testing.T) {
	const origin = "http://localhost:8000"

	assert.Equal(t, "http://localhost:8000/uploads/x.png", ResolveURL(origin, "/uploads/x.png"))
	assert.Equal(t, "http://localhost:8000/uploads/x.png", ResolveURL(origin+"/", "/uploads/x.png"))
	assert.Equal(t, "http://localhost:8000/x.png", ResolveURL(origin, "x.png"))
	assert.Equal(t, "https://cdn.example.com/x.png", ResolveURL(origin, "https://cdn.example.com/x.png"))
}

func TestImageResponse_ToDomain(t *testing.T) {
	r := ImageResponse{
		ID:         "cat.png",
		Name:       "cat.png",
		URL:        "/api/v1/images/cat.png",
		Size:       42,
		Type:       "image/png",
		UploadedAt: "2025-01-02T03:04:05",
	}

	img := r.ToDomain("http://localhost:8000")

	assert.Equal(t, "cat.png", img.ID)
	assert.Equal(t, "http://localhost:8000/api/v1/images/cat.png", img.URL)
	assert.Equal(t, int64(42), img.Size)
	assert.Equal(t, "image/png", img.Type)
	assert.Equal(t, "2025-01-02T03:04:05", img.UploadedAt)
}
