// Command seed populates the development database with demo data.
package main

import (
	"flag"
	"log"

	"gaethering/internal/config"
	"gaethering/internal/database"
	"gaethering/internal/seed"
)

func main() {
	members := flag.Int("members", 10, "number of demo members to create")
	postsPerCategory := flag.Int("posts-per-category", 15, "number of demo posts per category")
	dryRun := flag.Bool("dry-run", false, "log what would be created without writing")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "store plaintext demo passwords (faster)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	opts := seed.SeedOptions{
		DryRun:     *dryRun,
		SkipBcrypt: *skipBcrypt,
	}
	if err := seed.Demo(db, opts, *members, *postsPerCategory); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
