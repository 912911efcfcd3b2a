//go:build integration
// +build integration

package service_test

import (
	"context"
	"testing"

	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/testhelpers"
)

// TestService_LiveLookup_Integration runs a real lookup against
// OpenWeatherMap and verifies the second identical query is served from cache.
func TestService_LiveLookup_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	svc, _, cleanup := testhelpers.SetupIntegrationService(t, cfg)
	defer cleanup()

	ctx := context.Background()
	q := input.Query{Kind: input.KindCity, Value: "Delhi"}

	first, err := svc.Get(ctx, q)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if first.Current.Location == "" {
		t.Error("live lookup returned empty location")
	}
	if first.Cached {
		t.Error("first lookup Cached = true, want false")
	}

	second, err := svc.Get(ctx, q)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !second.Cached {
		t.Error("second lookup Cached = false, want cache hit")
	}
}

// TestService_LivePincode_Integration verifies a pincode lookup resolves.
func TestService_LivePincode_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	svc, _, cleanup := testhelpers.SetupIntegrationService(t, cfg)
	defer cleanup()

	report, err := svc.Get(context.Background(), input.Query{Kind: input.KindPincode, Value: "110001"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if report.Current.Location == "" {
		t.Error("pincode lookup returned empty location")
	}
}
