package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mausam.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad_Defaults verifies defaults apply with no file and no env.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("MEMCACHED_ADDRS", "")
	t.Setenv("MAUSAM_CONFIG", "")
	t.Setenv("MAUSAM_FAVOURITES", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIBaseURL != "https://api.openweathermap.org/data/2.5" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.CacheBackend != "in_memory" {
		t.Errorf("CacheBackend = %q, want in_memory", cfg.CacheBackend)
	}
	if cfg.RetryMaxAttempts != 1 {
		t.Errorf("RetryMaxAttempts = %d, want 1 (single attempt per query)", cfg.RetryMaxAttempts)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v, want 10s", cfg.APITimeout)
	}
}

// TestLoad_FileValues verifies YAML fields override defaults.
func TestLoad_FileValues(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("MEMCACHED_ADDRS", "")
	t.Setenv("MAUSAM_FAVOURITES", "")

	path := writeConfigFile(t, `
weather_api:
  timeout: 3s
cache:
  backend: memcached
  ttl: 10m
  memcached:
    addrs: "cachehost:11211"
    max_idle_conns: 4
reliability:
  retry_max_attempts: 3
  retry_base_delay: 50ms
  outbound_rps: "0.5"
favourites:
  - Delhi
  - "110001"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v, want 3s", cfg.APITimeout)
	}
	if cfg.CacheBackend != "memcached" || cfg.MemcachedAddrs != "cachehost:11211" {
		t.Errorf("cache backend = %q/%q", cfg.CacheBackend, cfg.MemcachedAddrs)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want 10m", cfg.CacheTTL)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryBaseDelay != 50*time.Millisecond {
		t.Errorf("retry = %d/%v", cfg.RetryMaxAttempts, cfg.RetryBaseDelay)
	}
	if cfg.OutboundRPS != 0.5 {
		t.Errorf("OutboundRPS = %v, want 0.5", cfg.OutboundRPS)
	}
	if len(cfg.Favourites) != 2 || cfg.Favourites[0] != "Delhi" {
		t.Errorf("Favourites = %v", cfg.Favourites)
	}
}

// TestLoad_EnvOverridesFile verifies environment variables win over the file.
func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
cache:
  backend: memcached
`)
	t.Setenv("OPENWEATHER_API_KEY", "env-key-1234567890")
	t.Setenv("CACHE_BACKEND", "in_memory")
	t.Setenv("MAUSAM_FAVOURITES", "Mumbai, Pune")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "env-key-1234567890" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.CacheBackend != "in_memory" {
		t.Errorf("CacheBackend = %q, want env override in_memory", cfg.CacheBackend)
	}
	if len(cfg.Favourites) != 2 || cfg.Favourites[1] != "Pune" {
		t.Errorf("Favourites = %v", cfg.Favourites)
	}
}

// TestLoad_ExplicitMissingFile verifies a named but missing file is an error.
func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for explicit missing file")
	}
}

// TestLoad_InvalidBackend verifies validation rejects unknown cache backends.
func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("error = %v, want cache.backend mention", err)
	}
}

// TestLoad_MalformedYAML verifies parse errors surface.
func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "cache: [not a map")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

// TestLoad_BadDurationFallsBack verifies unparsable durations fall back to
// defaults instead of failing.
func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	path := writeConfigFile(t, `
cache:
  ttl: "not-a-duration"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want default 5m", cfg.CacheTTL)
	}
}
