package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"go-resto-ops/internal/config"
	"go-resto-ops/internal/repository"
	"go-resto-ops/pkg/database"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "profile email (defaults to SEED_ADMIN_EMAIL)")
	password := flag.String("password", "", "new password (defaults to SEED_ADMIN_PASSWORD)")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *email == "" {
		*email = cfg.SeedAdminEmail
	}
	if *password == "" {
		*password = cfg.SeedAdminPassword
	}
	if len(*password) < 8 {
		log.Fatalf("❌ Password must be at least 8 characters")
	}

	// 2. Setup Database
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == config.DriverSQLite {
		dsn = cfg.DBPath
	}
	db := database.Connect(database.Options{Driver: cfg.DBDriver, DSN: dsn, Quiet: true})
	profiles := repository.NewProfileRepo(db)
	ctx := context.Background()

	// 3. Find profile
	profile, err := profiles.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	if err != nil {
		log.Fatalf("❌ Profile %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update; existing sessions stay valid until the next login rotates them.
	if err := profiles.UpdatePassword(ctx, profile.ID, string(hashedPassword)); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Password for %s has been reset", profile.Email)
}
