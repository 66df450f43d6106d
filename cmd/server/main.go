package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Josh-IE/risk-management/api"
	"github.com/Josh-IE/risk-management/internal/application/services"
	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/infrastructure/blobstore"
	"github.com/Josh-IE/risk-management/internal/infrastructure/database"
	"github.com/Josh-IE/risk-management/internal/interfaces/rest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	ctx := context.Background()

	if err := database.Migrate(cfg); err != nil {
		log.Fatalf("❌ Failed to migrate database: %v", err)
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Printf("✅ Database connection established (%s)", db.Driver())

	blobs, err := blobstore.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialise %s blob storage: %v", cfg.BlobStorage, err)
	}

	spec, err := api.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Invalid OpenAPI document: %v", err)
	}

	svcMgr := services.NewServiceManager(db, cfg, blobs)
	log.Println("🔧 Service manager initialized")

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := rest.RouterDeps{
		Schemas:        svcMgr.Schemas,
		Submissions:    svcMgr.Submissions,
		Projector:      svcMgr.Projector,
		Health:         db,
		OpenAPI:        spec,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MediaURL:       cfg.MediaURL,
	}
	if cfg.BlobStorage == config.StorageLocal {
		deps.MediaRoot = cfg.MediaRoot
	}
	router := rest.NewRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("✅ Server stopped")
}
