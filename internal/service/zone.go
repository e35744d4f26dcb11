package service

import (
	"context"

	"seungpyo.lee/ImageGallery/internal/domain"
)

// Source tells how a batch of files reached the upload zone.
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// ParseSource maps a form value to a Source; anything unknown is the picker.
func ParseSource(v string) Source {
	if Source(v) == SourceDrop {
		return SourceDrop
	}
	return SourcePicker
}

// UploadFunc receives one batch from the zone.
type UploadFunc func(ctx context.Context, files []domain.File) error

// UploadZone decides which captured files are forwarded to the upload
// handler. It holds no state of its own.
type UploadZone struct {
	onUpload UploadFunc
}

func NewUploadZone(onUpload UploadFunc) *UploadZone {
	return &UploadZone{onUpload: onUpload}
}

// Select forwards a picker selection as one batch. forwarded is false for an
// empty selection.
func (z *UploadZone) Select(ctx context.Context, files []domain.File) (forwarded bool, err error) {
	if len(files) == 0 {
		return false, nil
	}
	return true, z.onUpload(ctx, files)
}

// Drop forwards only the image files of a drop.
func (z *UploadZone) Drop(ctx context.Context, files []domain.File) (forwarded bool, err error) {
	images := FilterImages(files)
	if len(images) == 0 {
		return false, nil
	}
	return true, z.onUpload(ctx, images)
}

func (z *UploadZone) Receive(ctx context.Context, src Source, files []domain.File) (bool, error) {
	if src == SourceDrop {
		return z.Drop(ctx, files)
	}
	return z.Select(ctx, files)
}

// PickerEnabled reports whether clicking the zone opens the file picker.
func (z *UploadZone) PickerEnabled(uploading bool) bool {
	return !uploading
}

// FilterImages keeps files whose declared type is image/*, in order.
func FilterImages(files []domain.File) []domain.File {
	out := make([]domain.File, 0, len(files))
	for _, f := range files {
		if f.IsImage() {
			out = append(out, f)
		}
	}
	return out
}
