package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("OPENWEATHER_API_URL", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("MAUSAM_CONFIG", "")
	t.Setenv("MAUSAM_FAVOURITES", "")
}

// TestRootCmd_MissingAPIKey verifies a missing key with non-interactive stdin
// is a fatal startup error.
func TestRootCmd_MissingAPIKey(t *testing.T) {
	clearConfigEnv(t)

	cmd := NewRootCmd("test")
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("error = %v, want API key mention", err)
	}
}

// TestRootCmd_QuitImmediately verifies the wired session starts and exits
// cleanly on quit without touching the network.
func TestRootCmd_QuitImmediately(t *testing.T) {
	clearConfigEnv(t)

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetIn(strings.NewReader("quit\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-key", "test-key-1234567890"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "Thank you") {
		t.Errorf("output missing farewell\n%s", out.String())
	}
}

// TestRootCmd_PincodeLookup runs the full wiring against a stubbed API:
// classify, fetch, cache, render.
func TestRootCmd_PincodeLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/forecast") {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"list": []interface{}{}})
			return
		}
		if got := r.URL.Query().Get("zip"); got != "110001,IN" {
			t.Errorf("zip = %q, want 110001,IN", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"name": "New Delhi",
			"sys":  map[string]interface{}{"country": "IN"},
			"main": map[string]interface{}{"temp": 34.2, "feels_like": 38.0, "humidity": 48, "pressure": 1002},
			"weather": []map[string]interface{}{
				{"main": "Haze", "description": "haze"},
			},
		})
	}))
	defer srv.Close()

	clearConfigEnv(t)
	t.Setenv("OPENWEATHER_API_URL", srv.URL)

	var out bytes.Buffer
	cmd := NewRootCmd("test")
	cmd.SetIn(strings.NewReader("110001\nquit\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-key", "test-key-1234567890"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, want := range []string{"Location:", "Temperature:", "Humidity:", "New Delhi"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}
