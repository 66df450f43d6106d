package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/Josh-IE/risk-management/internal/application/services"
	"github.com/Josh-IE/risk-management/internal/config"
	"github.com/Josh-IE/risk-management/internal/infrastructure/blobstore"
	"github.com/Josh-IE/risk-management/internal/infrastructure/database"
	"github.com/Josh-IE/risk-management/internal/seed"
)

func main() {
	file := flag.String("file", "", "fixtures YAML to load instead of the built-in demo data")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	data := seed.DefaultFixtures()
	if *file != "" {
		if data, err = os.ReadFile(*file); err != nil {
			log.Fatalf("❌ Failed to read fixtures: %v", err)
		}
	}
	fixtures, err := seed.Parse(data)
	if err != nil {
		log.Fatalf("❌ %v", err)
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

	blobs, err := blobstore.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialise %s blob storage: %v", cfg.BlobStorage, err)
	}

	svcMgr := services.NewServiceManager(db, cfg, blobs)
	if _, err := seed.NewSeeder(svcMgr.Repos, svcMgr.Schemas).Run(ctx, fixtures); err != nil {
		log.Fatalf("❌ Error loading fixtures: %v", err)
	}
	log.Println("✅ Setup complete")
}
