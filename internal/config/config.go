package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultJWTSecret = "your-super-secret-key-change-in-production"
)

type Config struct {
	Env          string
	AppName      string
	Port         string
	AllowOrigins string

	DBDriver    string
	DatabaseURL string
	DBPath      string

	JWTSecret string
	JWTTTL    time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	// DecrementStockOnFulfill links order fulfillment to the stock ledger.
	DecrementStockOnFulfill bool
	RecentTransactionsLimit int

	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:               getEnv("APP_ENV", EnvDevelopment),
		AppName:           getEnv("APP_NAME", "Resto Ops v1.0"),
		Port:              getEnv("PORT", "3000"),
		AllowOrigins:      getEnv("ALLOW_ORIGINS", "*"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
		DBPath:            getEnv("DB_PATH", "./resto.db"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", "resto"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
		SeedAdminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123"),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverPostgres {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			getEnv("DB_PORT", "5432"),
		)
	}

	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Printf("Warning: invalid PORT %q, falling back to 3000", cfg.Port)
		cfg.Port = "3000"
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == EnvProduction {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = defaultJWTSecret
	}

	cfg.JWTTTL = time.Duration(getInt("JWT_TTL_HOURS", 24)) * time.Hour
	cfg.RecentTransactionsLimit = getInt("RECENT_TRANSACTIONS_LIMIT", 50)
	cfg.DecrementStockOnFulfill = getBool("STOCK_DECREMENT_ON_FULFILL", false)

	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("Warning: invalid %s %q, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s %q, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
