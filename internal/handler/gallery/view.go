package handler

import (
	"html"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"seungpyo.lee/ImageGallery/internal/domain"
	"seungpyo.lee/ImageGallery/internal/service"
)

const EmptyMessage = "No images uploaded yet. Start by uploading some beautiful images!"

// Card is one tile of the grid.
type Card struct {
	ID    string
	Label string // Name without markup
	Name  string
	URL   string
	Size  int64
	Type  string

	DownloadURL string
	ZoomURL     string
	DeleteURL   string
}

type GalleryView struct {
	Empty        bool
	Count        int
	Cards        []Card
	EmptyMessage string
}

// PageView is the data of index.html.
type PageView struct {
	Gallery        GalleryView
	Uploading      bool
	PickerEnabled  bool
	Notification   domain.Notification
	AutoHideMillis int64
}

// labelPolicy strips every tag. Its output is entity-escaped, so labels are
// unescaped again before html/template escapes them once.
var labelPolicy = bluemonday.StrictPolicy()

func cardLabel(name string) string {
	return html.UnescapeString(labelPolicy.Sanitize(name))
}

func newCard(img domain.Image) Card {
	base := "/images/" + url.PathEscape(img.ID)
	return Card{
		ID:          img.ID,
		Label:       cardLabel(img.Name),
		Name:        img.Name,
		URL:         img.URL,
		Size:        img.Size,
		Type:        img.Type,
		DownloadURL: base + "/download",
		ZoomURL:     base + "/zoom",
		DeleteURL:   base + "/delete",
	}
}

func newGalleryView(images []domain.Image) GalleryView {
	cards := make([]Card, 0, len(images))
	for _, img := range images {
		cards = append(cards, newCard(img))
	}
	return GalleryView{
		Empty:        len(cards) == 0,
		Count:        len(cards),
		Cards:        cards,
		EmptyMessage: EmptyMessage,
	}
}

func newPageView(snap service.Snapshot, zone *service.UploadZone, autoHideMillis int64) PageView {
	return PageView{
		Gallery:        newGalleryView(snap.Images),
		Uploading:      snap.Uploading,
		PickerEnabled:  zone.PickerEnabled(snap.Uploading),
		Notification:   snap.Notification,
		AutoHideMillis: autoHideMillis,
	}
}

// stateResponse is the JSON form of the page.
type stateResponse struct {
	Images        []domain.Image      `json:"images"`
	Total         int                 `json:"total"`
	Uploading     bool                `json:"uploading"`
	PickerEnabled bool                `json:"pickerEnabled"`
	Notification  domain.Notification `json:"notification"`
}

func newStateResponse(snap service.Snapshot, zone *service.UploadZone) stateResponse {
	return stateResponse{
		Images:        snap.Images,
		Total:         len(snap.Images),
		Uploading:     snap.Uploading,
		PickerEnabled: zone.PickerEnabled(snap.Uploading),
		Notification:  snap.Notification,
	}
}
