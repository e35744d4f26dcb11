package handler

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"seungpyo.lee/ImageGallery/internal/adapter"
	"seungpyo.lee/ImageGallery/internal/config"
	"seungpyo.lee/ImageGallery/internal/domain"
	"seungpyo.lee/ImageGallery/internal/repository"
	"seungpyo.lee/ImageGallery/internal/service"
	"seungpyo.lee/ImageGallery/pkg/logger"
	"seungpyo.lee/ImageGallery/pkg/metrics"
	"seungpyo.lee/ImageGallery/pkg/util"
)

const (
	SessionCookie = "gallery_session"
	octetStream   = "application/octet-stream"
)

type GalleryHandler interface {
	Index(c *gin.Context)
	Page(c *gin.Context)
	State(c *gin.Context)
	Upload(c *gin.Context)
	Remove(c *gin.Context)
	Dismiss(c *gin.Context)
	Download(c *gin.Context)
	Zoom(c *gin.Context)
}

type galleryHandler struct {
	cfg      *config.GalleryConfig
	views    *repository.ViewRepository
	transfer *adapter.Transfer
	metrics  *metrics.Registry
	log      *logger.Logger
}

func NewGalleryHandler(cfg *config.GalleryConfig, views *repository.ViewRepository, transfer *adapter.Transfer, reg *metrics.Registry, log *logger.Logger) GalleryHandler {
	return &galleryHandler{cfg: cfg, views: views, transfer: transfer, metrics: reg, log: log}
}

func RegisterRoutes(r gin.IRouter, h GalleryHandler) {
	r.GET("/", h.Index)
	r.GET("/gallery", h.Page)
	r.GET("/api/state", h.State)
	r.POST("/upload", h.Upload)
	r.POST("/images/:id/delete", h.Remove)
	r.GET("/images/:id/download", h.Download)
	r.GET("/images/:id/zoom", h.Zoom)
	r.POST("/notification/dismiss", h.Dismiss)
}

// Index is a page load: the session starts over from the store's list.
func (h *galleryHandler) Index(c *gin.Context) {
	g := h.views.Reset(h.session(c))
	g.Mount(c.Request.Context())
	h.metrics.Inc(c.Request.Context(), "gallery_views_total", map[string]string{"page": "index"}, 1)
	h.render(c, g)
}

// Page renders the current state without going back to the store.
func (h *galleryHandler) Page(c *gin.Context) {
	g := h.open(c)
	h.metrics.Inc(c.Request.Context(), "gallery_views_total", map[string]string{"page": "gallery"}, 1)
	h.render(c, g)
}

func (h *galleryHandler) State(c *gin.Context) {
	g := h.open(c)
	c.JSON(http.StatusOK, newStateResponse(g.Snapshot(), zoneFor(g)))
}

func (h *galleryHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()
	g := h.open(c)

	if err := c.Request.ParseMultipartForm(h.cfg.MaxUploadMemory); err != nil {
		h.log.Warn("invalid upload form", "error", err)
		h.metrics.Inc(ctx, "gallery_uploads_total", map[string]string{"result": "invalid"}, 1)
		h.respond(c, g, http.StatusBadRequest)
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	src := service.ParseSource(c.PostForm("source"))
	files := toFiles(form.File["files"])

	forwarded, err := zoneFor(g).Receive(ctx, src, files)
	switch {
	case !forwarded:
		h.log.Debug("upload skipped", "source", src, "files", len(files))
		h.metrics.Inc(ctx, "gallery_uploads_total", map[string]string{"result": "skipped"}, 1)
		h.respond(c, g, http.StatusOK)
	case err != nil:
		h.log.Warn("upload failed", "source", src, "files", len(files), "error", err)
		h.metrics.Inc(ctx, "gallery_uploads_total", map[string]string{"result": "failure"}, 1)
		h.respond(c, g, http.StatusUnprocessableEntity)
	default:
		h.log.Info("upload finished", "source", src, "files", len(files))
		h.metrics.Inc(ctx, "gallery_uploads_total", map[string]string{"result": "success"}, 1)
		h.respond(c, g, http.StatusOK)
	}
}

func (h *galleryHandler) Remove(c *gin.Context) {
	ctx := c.Request.Context()
	g := h.open(c)
	id := c.Param("id")

	if err := g.Remove(ctx, id); err != nil {
		var de *domain.DeleteError
		status := 0
		if errors.As(err, &de) {
			status = de.Status
		}
		h.log.Warn("delete failed", "id", id, "status", status, "error", err)
		h.metrics.Inc(ctx, "gallery_deletes_total", map[string]string{"result": "failure"}, 1)
		h.respond(c, g, http.StatusUnprocessableEntity)
		return
	}
	h.log.Info("image deleted", "id", id)
	h.metrics.Inc(ctx, "gallery_deletes_total", map[string]string{"result": "success"}, 1)
	h.respond(c, g, http.StatusOK)
}

func (h *galleryHandler) Dismiss(c *gin.Context) {
	g := h.open(c)
	g.Dismiss()
	h.respond(c, g, http.StatusOK)
}

// Download streams the record back as an attachment named after it.
// Failures leave the notification alone.
func (h *galleryHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()
	g := h.open(c)
	img, ok := g.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	saver := adapter.SaverFunc(func(filename, contentType string, data []byte) error {
		c.Header("Content-Disposition", attachment(filename))
		c.Data(http.StatusOK, contentType, data)
		return nil
	})
	if !h.transfer.DownloadFile(ctx, img.URL, img.Name, saver) {
		h.metrics.Inc(ctx, "gallery_downloads_total", map[string]string{"result": "failure"}, 1)
		c.JSON(http.StatusBadGateway, gin.H{"error": "download failed"})
		return
	}
	h.metrics.Inc(ctx, "gallery_downloads_total", map[string]string{"result": "success"}, 1)
}

func (h *galleryHandler) Zoom(c *gin.Context) {
	g := h.open(c)
	img, ok := g.Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.Redirect(http.StatusFound, img.URL)
}

// session returns the browser's session id, issuing one if needed. The
// cookie is re-sent on every request so it idles out with the server view.
func (h *galleryHandler) session(c *gin.Context) string {
	id, err := c.Cookie(SessionCookie)
	if err != nil || uuid.Validate(id) != nil {
		id = uuid.NewString()
	}
	c.SetCookie(SessionCookie, id, int(h.cfg.ViewTTL.Seconds()), "/", "", false, true)
	return id
}

// open returns the session's gallery, mounting it when it is new.
func (h *galleryHandler) open(c *gin.Context) *service.Gallery {
	g, created := h.views.Open(h.session(c))
	if created {
		g.Mount(c.Request.Context())
	}
	return g
}

func (h *galleryHandler) render(c *gin.Context, g *service.Gallery) {
	c.HTML(http.StatusOK, "index.html", newPageView(g.Snapshot(), zoneFor(g), h.cfg.NotificationTTL.Milliseconds()))
}

// respond answers a mutating request: JSON state for scripts, otherwise
// a redirect back to the page.
func (h *galleryHandler) respond(c *gin.Context, g *service.Gallery, status int) {
	if util.WantsJSON(c) {
		c.JSON(status, newStateResponse(g.Snapshot(), zoneFor(g)))
		return
	}
	c.Redirect(http.StatusSeeOther, "/gallery")
}

func zoneFor(g *service.Gallery) *service.UploadZone {
	return service.NewUploadZone(func(ctx context.Context, files []domain.File) error {
		_, err := g.Upload(ctx, withContentTypes(files))
		return err
	})
}

func toFiles(headers []*multipart.FileHeader) []domain.File {
	files := make([]domain.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, domain.File{
			Name: fh.Filename,
			Type: fh.Header.Get("Content-Type"),
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files
}

// withContentTypes fills in the part type of files the browser sent as
// octet-stream or untyped. It runs on batches the zone already accepted, so
// the drop filter only ever sees the declared type.
func withContentTypes(files []domain.File) []domain.File {
	out := make([]domain.File, len(files))
	for i, f := range files {
		if f.Type == "" || f.Type == octetStream {
			f.Type = sniff(f)
		}
		out[i] = f
	}
	return out
}

func sniff(f domain.File) string {
	rc, err := f.Open()
	if err != nil {
		return octetStream
	}
	defer rc.Close()
	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return octetStream
	}
	return mt.String()
}

func attachment(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}
