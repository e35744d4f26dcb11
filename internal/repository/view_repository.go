package repository

import (
	"sync"
	"time"

	"seungpyo.lee/ImageGallery/internal/service"
	"seungpyo.lee/ImageGallery/pkg/logger"
)

type viewEntry struct {
	gallery *service.Gallery
	timer   *time.Timer
}

// ViewRepository keeps one gallery per browser session. Entries idle for
// longer than ttl are dropped.
type ViewRepository struct {
	mu         sync.Mutex
	views      map[string]*viewEntry
	ttl        time.Duration
	newGallery func() *service.Gallery
	log        *logger.Logger
}

func NewViewRepository(ttl time.Duration, newGallery func() *service.Gallery, log *logger.Logger) *ViewRepository {
	return &ViewRepository{
		views:      make(map[string]*viewEntry),
		ttl:        ttl,
		newGallery: newGallery,
		log:        log,
	}
}

// Reset replaces the session's gallery with a fresh, unmounted one.
func (r *ViewRepository) Reset(id string) *service.Gallery {
	g := r.newGallery()
	r.mu.Lock()
	old := r.views[id]
	r.views[id] = r.newEntryLocked(id, g)
	r.mu.Unlock()

	if old != nil {
		old.stop()
	}
	return g
}

// Open returns the session's gallery, creating one if needed. created is
// true when the caller got a new, unmounted gallery.
func (r *ViewRepository) Open(id string) (g *service.Gallery, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.views[id]; ok {
		r.touchLocked(e)
		return e.gallery, false
	}
	g = r.newGallery()
	r.views[id] = r.newEntryLocked(id, g)
	return g, true
}

// Get looks a gallery up without creating one.
func (r *ViewRepository) Get(id string) (*service.Gallery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.views[id]
	if !ok {
		return nil, false
	}
	r.touchLocked(e)
	return e.gallery, true
}

func (r *ViewRepository) Delete(id string) {
	r.mu.Lock()
	e, ok := r.views[id]
	if ok {
		delete(r.views, id)
	}
	r.mu.Unlock()

	if ok {
		e.stop()
		r.log.Debug("gallery view dropped", "view", id)
	}
}

func (r *ViewRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func (r *ViewRepository) newEntryLocked(id string, g *service.Gallery) *viewEntry {
	e := &viewEntry{gallery: g}
	if r.ttl > 0 {
		e.timer = time.AfterFunc(r.ttl, func() { r.expire(id, e) })
	}
	return e
}

func (r *ViewRepository) touchLocked(e *viewEntry) {
	if e.timer != nil {
		e.timer.Reset(r.ttl)
	}
}

// expire drops id only if it still maps to e.
func (r *ViewRepository) expire(id string, e *viewEntry) {
	r.mu.Lock()
	cur, ok := r.views[id]
	if ok && cur == e {
		delete(r.views, id)
	}
	r.mu.Unlock()

	if ok && cur == e {
		e.gallery.Close()
		r.log.Debug("gallery view expired", "view", id)
	}
}

func (e *viewEntry) stop() {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.gallery.Close()
}
