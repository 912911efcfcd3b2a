//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/asheeshkh/mausam/internal/cache"
	"github.com/asheeshkh/mausam/internal/client"
	"github.com/asheeshkh/mausam/internal/service"
)

// IntegrationConfig holds configuration for live-API integration tests.
type IntegrationConfig struct {
	APIKey        string
	APIBaseURL    string
	CacheBackend  string // "in_memory" or "memcached"
	MemcachedAddr string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test when OPENWEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationConfig {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}

	baseURL := os.Getenv("OPENWEATHER_API_URL")
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}

	memcachedAddr := os.Getenv("MEMCACHED_ADDRS")
	if memcachedAddr == "" {
		memcachedAddr = "localhost:11211"
	}

	return IntegrationConfig{
		APIKey:        apiKey,
		APIBaseURL:    baseURL,
		CacheBackend:  os.Getenv("INTEGRATION_CACHE_BACKEND"),
		MemcachedAddr: memcachedAddr,
	}
}

// SetupIntegrationService creates a fully configured service for integration
// tests. Returns the service, the store, and a cleanup function.
func SetupIntegrationService(t *testing.T, cfg IntegrationConfig) (*service.WeatherService, cache.Store, func()) {
	weatherClient, err := client.NewOpenWeatherClient(
		cfg.APIKey, cfg.APIBaseURL, 5*time.Second, 1, client.RetryPolicy{}, nil)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}

	var store cache.Store
	backend := "in_memory"
	cleanup := func() {}

	if cfg.CacheBackend == "memcached" {
		mc, err := cache.NewMemcached(cfg.MemcachedAddr, 500*time.Millisecond, 2)
		if err == nil && mc.Ping() == nil {
			store = mc
			backend = "memcached"
			cleanup = func() { _ = mc.Close() }
			t.Logf("using memcached at %s", cfg.MemcachedAddr)
		} else {
			t.Logf("memcached not available, using in-memory cache")
		}
	}
	if store == nil {
		store = cache.NewMemory()
	}

	return service.New(weatherClient, store, 5*time.Minute, backend, nil), store, cleanup
}
