package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miandari/dailygrit/pkg/config"
	"github.com/Miandari/dailygrit/pkg/logger"
	"github.com/Miandari/dailygrit/pkg/metrics"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 0, Mode: "test", ShutdownTimeout: time.Second},
		Storage: config.StorageConfig{Driver: config.DriverMemory},
		Lock:    config.LockConfig{Driver: config.DriverMemory},
		JWT:     config.JWTConfig{Secret: "app-test", Issuer: "dailygrit", Expiration: time.Hour},
		App:     config.AppConfig{Timezone: "UTC"},
	}
}

func TestNewWiresMemoryDrivers(t *testing.T) {
	logger.Init(logger.Config{Level: "error"})

	a, err := New(context.Background(), memoryConfig(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.Server.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	token, _, err := a.Services.Tokens.Issue("alice")
	require.NoError(t, err)
	userID, err := a.Services.Tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	logger.Init(logger.Config{Level: "error"})

	a, err := New(context.Background(), memoryConfig(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestUnknownDrivers(t *testing.T) {
	logger.Init(logger.Config{Level: "error"})

	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := OpenStore(cfg)
	assert.Error(t, err)

	cfg = memoryConfig()
	cfg.Lock.Driver = "etcd"
	_, _, err = OpenLocker(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClockTimezone(t *testing.T) {
	cfg := memoryConfig()
	cfg.App.Timezone = "Europe/Berlin"
	clock, err := Clock(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", clock().Location().String())

	cfg.App.Timezone = "Mars/Olympus"
	_, err = Clock(cfg)
	assert.Error(t, err)
}

func TestMigrateNeedsPostgres(t *testing.T) {
	_, err := Migrate(context.Background(), memoryConfig())
	assert.Error(t, err)
}
