package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/photogallery/server/internal/config"
	"github.com/photogallery/server/internal/handlers"
	"github.com/photogallery/server/internal/imageproc"
	custommw "github.com/photogallery/server/internal/middleware"
	"github.com/photogallery/server/internal/notify"
	"github.com/photogallery/server/internal/observability"
	"github.com/photogallery/server/internal/repository"
	"github.com/photogallery/server/internal/services"
	"github.com/photogallery/server/internal/store"
	"github.com/photogallery/server/internal/transfer"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Telemetry is configured from OTEL_* environment variables
	ctx := context.Background()
	telemetry, err := observability.Initialize(ctx, observability.NewConfig("photogallery-server", "1.0.0"))
	if err != nil {
		log.Printf("Telemetry disabled: %v", err)
	}

	// Initialize database
	var db *sql.DB
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
	} else {
		log.Println("Using SQLite database")
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	albumRepo := repository.NewAlbumRepository(db)
	albumPhotoRepo := repository.NewAlbumPhotoRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	// Initialize services
	storageService, err := services.NewPhotoStorageService(
		cfg.PhotoStorage.BasePath,
		cfg.PhotoStorage.AllowedExtensions,
		cfg.PhotoStorage.MaxFileSizeMB,
	)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	albumService := services.NewAlbumService(albumRepo, albumPhotoRepo, photoRepo)
	photoService := services.NewPhotoService(
		photoRepo, albumPhotoRepo, storageService,
		services.NewHashService(), services.NewEXIFService(),
	)

	// Seed the protected default album
	if _, err := albumService.EnsureDefaultAlbum(ctx, cfg.DefaultAlbumName); err != nil {
		log.Fatalf("Failed to ensure default album: %v", err)
	}

	// WebSocket hub doubles as the toast notifier
	hub := notify.NewHub()
	go hub.Run()
	notifier := notify.MultiNotifier{
		notify.NewLogNotifier(observability.GetLogger()),
		hub,
	}

	// State stores
	albumStore := store.NewAlbumStore(albumService, notifier)
	defer albumStore.Close()
	photoStore := store.NewPhotoStore(photoService, notifier)
	if _, err := albumStore.LoadAlbums(ctx); err != nil {
		log.Fatalf("Failed to load albums: %v", err)
	}
	if _, err := photoStore.Refresh(ctx); err != nil {
		log.Fatalf("Failed to load photos: %v", err)
	}

	// Drag-and-drop transfer protocol
	transferController := transfer.NewController(albumStore)

	// Compression pipeline
	compressOpts := imageproc.Options{
		MaxWidth:            cfg.Compression.MaxWidth,
		MaxHeight:           cfg.Compression.MaxHeight,
		Quality:             cfg.Compression.Quality,
		MaxFileSize:         cfg.Compression.MaxFileSizeKB * 1024,
		Format:              cfg.Compression.Format,
		MaintainAspectRatio: true,
	}

	galleryMetrics, err := observability.NewGalleryMetrics()
	if err != nil {
		log.Fatalf("Failed to create gallery metrics: %v", err)
	}

	// Initialize handlers
	albumHandler := handlers.NewAlbumHandler(albumStore, photoStore, hub, galleryMetrics)
	photoHandler := handlers.NewPhotoHandler(
		photoService, albumService, photoStore, albumStore,
		imageproc.NewCompressor(), compressOpts, cfg.Compression.Enabled, hub, galleryMetrics,
	)
	transferHandler := handlers.NewTransferHandler(transferController)
	websocketHandler := handlers.NewWebSocketHandler(hub)
	healthHandler := handlers.NewHealthHandler()

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to create HTTP metrics: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	r.Get("/health", healthHandler.HealthCheck)

	// The websocket upgrade needs the raw ResponseWriter, so it stays
	// outside the instrumented group.
	r.Get("/api/ws", websocketHandler.HandleConnection)

	r.Group(func(r chi.Router) {
		r.Use(observability.TracingMiddleware("photogallery-server"))
		r.Use(observability.MetricsMiddleware(httpMetrics))

		r.Get("/api/health", healthHandler.HealthCheck)

		r.Route("/api/albums", func(r chi.Router) {
			r.Get("/", albumHandler.ListAlbums)
			r.Post("/", albumHandler.CreateAlbum)
			r.Get("/{id}", albumHandler.GetAlbum)
			r.Put("/{id}", albumHandler.UpdateAlbum)
			r.Delete("/{id}", albumHandler.DeleteAlbum)
			r.Post("/{id}/photos", albumHandler.AddPhoto)
			r.Delete("/{id}/photos/{photoId}", albumHandler.RemovePhoto)
		})
		r.Post("/api/photos/move", albumHandler.MovePhoto)

		r.Route("/api/photos", func(r chi.Router) {
			r.Post("/upload", photoHandler.Upload)
			r.Get("/", photoHandler.List)
			r.Get("/{id}", photoHandler.GetByID)
			r.Get("/{id}/content", photoHandler.Content)
			r.Delete("/{id}", photoHandler.Delete)
		})

		r.Route("/api/transfer", func(r chi.Router) {
			r.Post("/begin", transferHandler.Begin)
			r.Post("/target", transferHandler.Target)
			r.Post("/leave", transferHandler.Leave)
			r.Post("/commit", transferHandler.Commit)
			r.Post("/cancel", transferHandler.Cancel)
		})
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Longer for uploads
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Photo Gallery Server starting on %s", cfg.ServerAddress)
		log.Printf("Photo storage path: %s", cfg.PhotoStorage.BasePath)
		log.Printf("Max file size: %dMB", cfg.PhotoStorage.MaxFileSizeMB)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Printf("Telemetry shutdown error: %v", err)
		}
	}

	log.Println("Server stopped")
}
