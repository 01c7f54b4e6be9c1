package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	port := 5432
	if p, err := strconv.Atoi(os.Getenv("DAILYGRIT_DATABASE_PORT")); err == nil {
		port = p
	}
	host := os.Getenv("DAILYGRIT_DATABASE_HOST")
	if host == "" {
		host = "localhost"
	}
	return Config{
		Host:            host,
		Port:            port,
		User:            "dailygrit",
		Password:        "dailygrit_dev_password",
		Database:        "dailygrit_dev",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		Timeout:         3 * time.Second,
	}
}

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "grit", Password: "p@ss word", Database: "daily"}

	url := cfg.URL()

	assert.Contains(t, url, "postgres://grit:p%40ss%20word@db:5433/daily")
	assert.Contains(t, url, "sslmode=disable")
	assert.Contains(t, url, "connect_timeout=5")
}

func TestMigrationsEmbedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001_init", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS daily_entries")
	assert.Contains(t, migrations[0].SQL, "UNIQUE (participant_id, entry_date)")

	assert.Equal(t, "002_join_requests", migrations[1].Version)
	assert.Contains(t, migrations[1].SQL, "REFERENCES challenges(id) ON DELETE CASCADE")
}

func TestHealthCheckAndMigrate(t *testing.T) {
	db, err := NewDB(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, db.HealthCheck(ctx))

	_, err = db.Migrate(ctx)
	require.NoError(t, err)

	// second run is a no-op
	applied, err := db.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestNewPGXPool(t *testing.T) {
	pool, err := NewPGXPool(testConfig())
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
		return
	}
	defer pool.Close()

	var one int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
