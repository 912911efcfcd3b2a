package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/asheeshkh/mausam/internal/input"
	"github.com/asheeshkh/mausam/internal/models"
)

type fakeFetcher struct {
	calls []input.Query
	err   error
}

func (f *fakeFetcher) Get(ctx context.Context, q input.Query) (models.Report, error) {
	f.calls = append(f.calls, q)
	return models.Report{}, f.err
}

// TestPrefetcher_Warm verifies each valid favourite is fetched once.
func TestPrefetcher_Warm(t *testing.T) {
	f := &fakeFetcher{}
	p := NewPrefetcher(f, nil)

	p.Warm(context.Background(), []string{"Delhi", "110001"})

	if len(f.calls) != 2 {
		t.Fatalf("fetch calls = %d, want 2", len(f.calls))
	}
	if f.calls[0].Kind != input.KindCity || f.calls[0].Value != "Delhi" {
		t.Errorf("first call = %+v, want city Delhi", f.calls[0])
	}
	if f.calls[1].Kind != input.KindPincode || f.calls[1].Value != "110001" {
		t.Errorf("second call = %+v, want pincode 110001", f.calls[1])
	}
}

// TestPrefetcher_Warm_SkipsInvalid verifies malformed favourites are skipped
// without aborting the rest.
func TestPrefetcher_Warm_SkipsInvalid(t *testing.T) {
	f := &fakeFetcher{}
	p := NewPrefetcher(f, nil)

	p.Warm(context.Background(), []string{"del/hi", "", "Chennai"})

	if len(f.calls) != 1 {
		t.Fatalf("fetch calls = %d, want 1", len(f.calls))
	}
	if f.calls[0].Value != "Chennai" {
		t.Errorf("call = %+v, want Chennai", f.calls[0])
	}
}

// TestPrefetcher_Warm_FetchErrorsNonFatal verifies fetch failures do not stop
// warming of later locations.
func TestPrefetcher_Warm_FetchErrorsNonFatal(t *testing.T) {
	f := &fakeFetcher{err: errors.New("upstream down")}
	p := NewPrefetcher(f, nil)

	p.Warm(context.Background(), []string{"Delhi", "Mumbai"})

	if len(f.calls) != 2 {
		t.Errorf("fetch calls = %d, want 2 despite errors", len(f.calls))
	}
}

// TestPrefetcher_Warm_Empty verifies no work happens with no favourites.
func TestPrefetcher_Warm_Empty(t *testing.T) {
	f := &fakeFetcher{}
	NewPrefetcher(f, nil).Warm(context.Background(), nil)
	if len(f.calls) != 0 {
		t.Errorf("fetch calls = %d, want 0", len(f.calls))
	}
}
