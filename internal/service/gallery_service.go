package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"seungpyo.lee/ImageGallery/internal/domain"
	"seungpyo.lee/ImageGallery/pkg/logger"
)

const DeletedMessage = "Image deleted successfully"

const mountTimeout = 30 * time.Second

// Snapshot is a point-in-time copy of the gallery state.
type Snapshot struct {
	Images       []domain.Image      `json:"images"`
	Uploading    bool                `json:"uploading"`
	Notification domain.Notification `json:"notification"`
}

// Gallery owns the view state of one page: the image collection, the
// upload-in-progress flag and the notification banner. The three are
// updated independently.
type Gallery struct {
	svc      domain.ImageService
	log      *logger.Logger
	autoHide time.Duration

	imagesMu sync.RWMutex
	images   []domain.Image

	// uploads in flight; the flag is on while this is positive
	inFlight  atomic.Int32
	uploadSeq atomic.Uint64

	noteMu     sync.Mutex
	note       domain.Notification
	noteGen    uint64
	noteTimer  *time.Timer
	lastUpload uint64 // newest upload id that has reported

	listGroup singleflight.Group
}

// NewGallery returns an empty gallery. A positive autoHide closes each
// notification after that delay.
func NewGallery(svc domain.ImageService, autoHide time.Duration, log *logger.Logger) *Gallery {
	return &Gallery{
		svc:      svc,
		log:      log,
		autoHide: autoHide,
		images:   []domain.Image{},
		note:     domain.Notification{Severity: domain.SeveritySuccess},
	}
}

// Mount replaces the collection with the store's current list. The list
// call is shared by concurrent mounts, so it outlives a cancelled caller.
func (g *Gallery) Mount(ctx context.Context) {
	v, _, shared := g.listGroup.Do("list", func() (interface{}, error) {
		listCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mountTimeout)
		defer cancel()
		return g.svc.ListAll(listCtx), nil
	})
	listed, _ := v.([]domain.Image)

	g.imagesMu.Lock()
	g.images = uniqueByID(listed, nil)
	count := len(g.images)
	g.imagesMu.Unlock()

	g.log.Debug("gallery mounted", "images", count, "shared", shared)
}

// Upload sends files to the store and prepends the created records.
func (g *Gallery) Upload(ctx context.Context, files []domain.File) ([]domain.Image, error) {
	if len(files) == 0 {
		return nil, domain.ErrNoFiles
	}
	id := g.uploadSeq.Add(1)
	g.inFlight.Add(1)
	defer g.inFlight.Add(-1)

	uploaded, err := g.svc.Upload(ctx, files)
	if err != nil {
		g.notifyUpload(id, domain.Notification{
			Open:     true,
			Message:  messageOf(err, domain.UploadFailedMessage),
			Severity: domain.SeverityError,
		})
		return nil, err
	}

	g.imagesMu.Lock()
	g.images = uniqueByID(uploaded, g.images)
	g.imagesMu.Unlock()

	g.notifyUpload(id, domain.Notification{
		Open:     true,
		Message:  fmt.Sprintf("Successfully uploaded %d image(s)", len(uploaded)),
		Severity: domain.SeveritySuccess,
	})
	return uploaded, nil
}

// Remove deletes id from the store, then from the collection. On failure
// the collection is left untouched.
func (g *Gallery) Remove(ctx context.Context, id string) error {
	if err := g.svc.Remove(ctx, id); err != nil {
		g.notify(domain.Notification{
			Open:     true,
			Message:  messageOf(err, domain.DeleteFailedMessage),
			Severity: domain.SeverityError,
		})
		return err
	}

	g.imagesMu.Lock()
	kept := make([]domain.Image, 0, len(g.images))
	for _, img := range g.images {
		if img.ID != id {
			kept = append(kept, img)
		}
	}
	g.images = kept
	g.imagesMu.Unlock()

	g.notify(domain.Notification{Open: true, Message: DeletedMessage, Severity: domain.SeveritySuccess})
	return nil
}

// Dismiss closes the banner, keeping its message and severity.
func (g *Gallery) Dismiss() {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	g.note.Open = false
	g.stopTimerLocked()
}

func (g *Gallery) Uploading() bool {
	return g.inFlight.Load() > 0
}

func (g *Gallery) Notification() domain.Notification {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	return g.note
}

func (g *Gallery) Images() []domain.Image {
	g.imagesMu.RLock()
	defer g.imagesMu.RUnlock()
	out := make([]domain.Image, len(g.images))
	copy(out, g.images)
	return out
}

// Find returns the record with the given id.
func (g *Gallery) Find(id string) (domain.Image, bool) {
	g.imagesMu.RLock()
	defer g.imagesMu.RUnlock()
	for _, img := range g.images {
		if img.ID == id {
			return img, true
		}
	}
	return domain.Image{}, false
}

func (g *Gallery) Snapshot() Snapshot {
	return Snapshot{
		Images:       g.Images(),
		Uploading:    g.Uploading(),
		Notification: g.Notification(),
	}
}

// Close stops the pending auto-dismiss timer.
func (g *Gallery) Close() {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	g.stopTimerLocked()
}

// notifyUpload drops the notification of an upload older than one that
// has already reported.
func (g *Gallery) notifyUpload(id uint64, n domain.Notification) {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	if id < g.lastUpload {
		g.log.Debug("stale upload notification dropped", "upload", id, "latest", g.lastUpload)
		return
	}
	g.lastUpload = id
	g.setLocked(n)
}

func (g *Gallery) notify(n domain.Notification) {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	g.setLocked(n)
}

func (g *Gallery) setLocked(n domain.Notification) {
	g.note = n
	g.noteGen++
	g.stopTimerLocked()
	if g.autoHide <= 0 {
		return
	}
	gen := g.noteGen
	g.noteTimer = time.AfterFunc(g.autoHide, func() { g.expire(gen) })
}

func (g *Gallery) expire(gen uint64) {
	g.noteMu.Lock()
	defer g.noteMu.Unlock()
	if g.noteGen == gen {
		g.note.Open = false
	}
}

func (g *Gallery) stopTimerLocked() {
	if g.noteTimer != nil {
		g.noteTimer.Stop()
		g.noteTimer = nil
	}
}

func messageOf(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// uniqueByID returns front followed by rest, keeping the first record of
// each id.
func uniqueByID(front, rest []domain.Image) []domain.Image {
	seen := make(map[string]struct{}, len(front)+len(rest))
	out := make([]domain.Image, 0, len(front)+len(rest))
	for _, list := range [][]domain.Image{front, rest} {
		for _, img := range list {
			if _, dup := seen[img.ID]; dup {
				continue
			}
			seen[img.ID] = struct{}{}
			out = append(out, img)
		}
	}
	return out
}
