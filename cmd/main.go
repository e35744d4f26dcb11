package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/ImageGallery/internal/adapter"
	"seungpyo.lee/ImageGallery/internal/config"
	gallery "seungpyo.lee/ImageGallery/internal/handler/gallery"
	"seungpyo.lee/ImageGallery/internal/repository"
	"seungpyo.lee/ImageGallery/internal/service"
	"seungpyo.lee/ImageGallery/pkg/logger"
	"seungpyo.lee/ImageGallery/pkg/metrics"
	"seungpyo.lee/ImageGallery/pkg/middleware"
	"seungpyo.lee/ImageGallery/web"
)

func main() {
	cfg, err := config.LoadGalleryConfig()
	if err != nil {
		logger.New("info").Fatal("failed to load config", "error", err)
	}
	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	gin.SetMode(cfg.GinMode)
	reg := metrics.NewRegistry("image-gallery")

	client := &http.Client{Timeout: cfg.RequestTimeout}
	svc := adapter.NewImageAdapter(cfg, client, log)
	views := repository.NewViewRepository(cfg.ViewTTL, func() *service.Gallery {
		return service.NewGallery(svc, cfg.NotificationTTL, log)
	}, log)
	galleryH := gallery.NewGalleryHandler(cfg, views, adapter.NewTransfer(client, log), reg, log)

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatal("failed to parse templates", "error", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log, reg))
	r.MaxMultipartMemory = cfg.MaxUploadMemory
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", web.Static())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", reg.GinHandlerText)
	gallery.RegisterRoutes(r, galleryH)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("start image gallery", "addr", srv.Addr, "api", cfg.APIBaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}
