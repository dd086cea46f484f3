package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/resto")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("STOCK_DECREMENT_ON_FULFILL", "")
	t.Setenv("RECENT_TRANSACTIONS_LIMIT", "")
	t.Setenv("PORT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, defaultJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 50, cfg.RecentTransactionsLimit)
	assert.False(t, cfg.DecrementStockOnFulfill)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092 ,")
	t.Setenv("STOCK_DECREMENT_ON_FULFILL", "true")
	t.Setenv("RECENT_TRANSACTIONS_LIMIT", "not-a-number")
	t.Setenv("PORT", "abc")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.DecrementStockOnFulfill)
	assert.Equal(t, 50, cfg.RecentTransactionsLimit)
	assert.Equal(t, "3000", cfg.Port)
}

func TestFromEnv_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProduction)
	t.Setenv("DATABASE_URL", "postgres://localhost/resto")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := FromEnv()
	assert.Error(t, err)
}
