package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Driver string // "postgres" or "sqlite"
	DSN    string // postgres DSN or sqlite path
	Quiet  bool
}

// Open connects to the configured database and sets up pooling.
func Open(opts Options) (*gorm.DB, error) {
	level := logger.Info
	if opts.Quiet {
		level = logger.Silent
	}
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres", "":
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true, // pgbouncer/transaction pooling friendly
		})
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    false,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// SQLite allows a single writer; one connection keeps transactions serialised.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return db, nil
}

// Connect is Open that exits the process on failure, for use from main.
func Connect(opts Options) *gorm.DB {
	db, err := Open(opts)
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}
	log.Println("Database connection established")
	return db
}
