package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/muesli/gominatim"
	"github.com/rubiojr/fuelfinder/internal/geo"
)

var urgench = geo.Point{Lat: 41.5526, Lng: 60.6269}

type fakeSearch struct {
	calls   int
	results map[string][]gominatim.SearchResult
	err     error
}

func (f *fakeSearch) search(ctx context.Context, location string) ([]gominatim.SearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[location], nil
}

func newFake() *fakeSearch {
	return &fakeSearch{results: map[string][]gominatim.SearchResult{
		"Khiva": {{Lat: "41.3788", Lon: "60.3629", DisplayName: "Xiva, Xorazm"}},
		"Bad":   {{Lat: "north", Lon: "60"}},
	}}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	r := NewResolverWithSearch(fake.search, urgench, nil)

	tests := []struct {
		name     string
		query    Query
		expected geo.Point
		fallback bool
		err      error
	}{
		{"coordinates", Query{Lat: 41.30, Lng: 69.24, HasCoords: true, Location: "Khiva"}, geo.Point{Lat: 41.30, Lng: 69.24}, false, nil},
		{"zero coordinates", Query{HasCoords: true}, geo.Point{}, false, nil},
		{"out of range", Query{Lat: 91, Lng: 0, HasCoords: true}, geo.Point{}, false, ErrInvalidLocation},
		{"place name", Query{Location: " Khiva "}, geo.Point{Lat: 41.3788, Lng: 60.3629}, false, nil},
		{"unknown place", Query{Location: "Atlantis"}, geo.Point{}, false, ErrLocationNotFound},
		{"nothing supplied", Query{}, urgench, true, nil},
	}

	for _, test := range tests {
		res, err := r.Resolve(ctx, test.query)
		if !errors.Is(err, test.err) {
			t.Errorf("%s: expected error %v, got %v", test.name, test.err, err)
			continue
		}
		if err != nil {
			continue
		}
		if res.Point != test.expected || res.Fallback != test.fallback {
			t.Errorf("%s: expected %v (fallback %v), got %v (fallback %v)",
				test.name, test.expected, test.fallback, res.Point, res.Fallback)
		}
	}
}

func TestResolveCachesLookups(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	r := NewResolverWithSearch(fake.search, urgench, nil)

	for _, location := range []string{"Khiva", "khiva", "KHIVA "} {
		res, err := r.Resolve(ctx, Query{Location: location})
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", location, err)
		}
		if res.Name != "Xiva, Xorazm" {
			t.Errorf("Unexpected display name %q", res.Name)
		}
	}
	if fake.calls != 1 {
		t.Errorf("Expected 1 lookup, got %d", fake.calls)
	}
}

func TestResolveSearchErrors(t *testing.T) {
	ctx := context.Background()

	fake := newFake()
	fake.err = errors.New("connection refused")
	r := NewResolverWithSearch(fake.search, urgench, nil)
	if _, err := r.Resolve(ctx, Query{Location: "Khiva"}); err == nil || errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Expected wrapped search error, got %v", err)
	}

	r = NewResolverWithSearch(newFake().search, urgench, nil)
	if _, err := r.Resolve(ctx, Query{Location: "Bad"}); err == nil {
		t.Error("Expected error for malformed coordinates")
	}
}

func TestSetFallback(t *testing.T) {
	r := NewResolverWithSearch(newFake().search, urgench, nil)
	tashkent := geo.Point{Lat: 41.2995, Lng: 69.2401}
	r.SetFallback(tashkent)

	res, err := r.Resolve(context.Background(), Query{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Point != tashkent || !res.Fallback {
		t.Errorf("Expected new fallback, got %+v", res)
	}
}
