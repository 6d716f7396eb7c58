package mapview

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/shopspring/decimal"
	"github.com/tkrajina/gpxgo/gpx"
)

func testStations() []api.RankedStation {
	rating := 4.7
	dist := 3.46
	return []api.RankedStation{
		{
			Station: api.Station{
				ID:        "1",
				Name:      api.LocalizedText{"uz": "UzAuto Neft", "en": "UzAuto Oil"},
				Address:   api.Text("Amir Temur ko'chasi 15"),
				Lat:       41.3432,
				Lng:       69.2854,
				FuelTypes: []string{"AI-92", "AI-95"},
				Prices: map[string]decimal.Decimal{
					"AI-95": decimal.NewFromInt(10500),
					"AI-92": decimal.NewFromInt(9800),
				},
				Rating: &rating,
			},
			DistanceKm: &dist,
		},
		{
			Station: api.Station{
				ID:            "2",
				Name:          api.Text("Mustang"),
				Lat:           41.2856,
				Lng:           69.2023,
				FuelTypes:     []string{"AI-80"},
				DirectionsURL: "https://maps.example.com/mustang",
			},
		},
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		backend  string
		expected string
		err      error
	}{
		{"google", BackendGoogle, nil},
		{"Leaflet", BackendLeaflet, nil},
		{"", BackendLeaflet, nil},
		{"bing", "", ErrUnknownBackend},
	}

	for _, test := range tests {
		r, err := New(test.backend, "key")
		if !errors.Is(err, test.err) {
			t.Errorf("New(%q): expected error %v, got %v", test.backend, test.err, err)
			continue
		}
		if err == nil && r.Backend() != test.expected {
			t.Errorf("New(%q): expected backend %s, got %s", test.backend, test.expected, r.Backend())
		}
	}
}

func TestGoogleRequiresKey(t *testing.T) {
	r := &Google{}
	if _, err := r.Render(View{Stations: testStations()}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}

	r.APIKey = "abc 123"
	st, err := r.Render(View{Stations: testStations(), Fallback: geo.Point{Lat: 41.2995, Lng: 69.2401}})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if st.ScriptURL != "https://maps.googleapis.com/maps/api/js?key=abc+123" {
		t.Errorf("Unexpected script URL %s", st.ScriptURL)
	}
	if st.Zoom != 11 {
		t.Errorf("Expected overview zoom 11, got %d", st.Zoom)
	}
}

func TestLeafletOverview(t *testing.T) {
	ref := geo.Point{Lat: 41.30, Lng: 69.24}
	st, err := (&Leaflet{}).Render(View{
		Stations:  testStations(),
		Reference: &ref,
		Fallback:  geo.Point{Lat: 41.2995, Lng: 69.2401},
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	if st.Zoom != 13 || st.Popup != nil {
		t.Errorf("Expected overview zoom 13 without popup, got %d, %+v", st.Zoom, st.Popup)
	}
	if st.Center.Lat != 41.30 || st.Center.Lng != 69.24 {
		t.Errorf("Expected map centered on the reference, got %+v", st.Center)
	}
	if st.UserMarker == nil || *st.UserMarker != st.Center {
		t.Errorf("Expected user marker at the reference, got %+v", st.UserMarker)
	}
	if !strings.Contains(st.TileURL, "openstreetmap.org") || st.Attribution == "" {
		t.Errorf("Expected OpenStreetMap tiles, got %q %q", st.TileURL, st.Attribution)
	}

	if len(st.Markers) != 2 {
		t.Fatalf("Expected 2 markers, got %d", len(st.Markers))
	}
	if st.Markers[0].Title != "UzAuto Oil" {
		t.Errorf("Expected localized marker title, got %q", st.Markers[0].Title)
	}
	if st.Markers[0].DirectionsURL != "https://www.google.com/maps/dir/?api=1&destination=41.3432,69.2854" {
		t.Errorf("Unexpected directions link %s", st.Markers[0].DirectionsURL)
	}
	if st.Markers[1].DirectionsURL != "https://maps.example.com/mustang" {
		t.Errorf("Expected supplied directions link, got %s", st.Markers[1].DirectionsURL)
	}
}

func TestFallbackCenter(t *testing.T) {
	st, err := (&Leaflet{}).Render(View{Fallback: geo.Point{Lat: 41.5526, Lng: 60.6269}})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if st.Center.Lat != 41.5526 || st.Center.Lng != 60.6269 || st.UserMarker != nil {
		t.Errorf("Expected fallback center without user marker, got %+v %+v", st.Center, st.UserMarker)
	}
	if st.Markers == nil {
		t.Error("Expected empty, non-nil markers")
	}
}

func TestSelectedStationPopup(t *testing.T) {
	st, err := (&Leaflet{}).Render(View{Stations: testStations(), Selection: "1", Language: "uz"})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	if st.Zoom != SelectedZoom {
		t.Errorf("Expected zoom %d, got %d", SelectedZoom, st.Zoom)
	}
	if st.Center.Lat != 41.3432 || st.Center.Lng != 69.2854 {
		t.Errorf("Expected map centered on the selection, got %+v", st.Center)
	}
	if !st.Markers[0].Selected || st.Markers[1].Selected {
		t.Errorf("Unexpected marker selection %+v", st.Markers)
	}

	p := st.Popup
	if p == nil || p.StationID != "1" || p.Title != "UzAuto Neft" {
		t.Fatalf("Unexpected popup %+v", p)
	}
	expected := []string{
		"Amir Temur ko'chasi 15",
		"3.5 km",
		"AI-92: 9 800 so'm",
		"AI-95: 10 500 so'm",
	}
	for _, want := range expected {
		found := false
		for _, line := range p.Lines {
			if line == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected popup line %q in %q", want, p.Lines)
		}
	}
}

func TestWriteGPX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGPX(&buf, testStations(), "en"); err != nil {
		t.Fatalf("WriteGPX() failed: %v", err)
	}

	g, err := gpx.ParseBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() failed: %v", err)
	}
	if len(g.Waypoints) != 2 {
		t.Fatalf("Expected 2 waypoints, got %d", len(g.Waypoints))
	}
	if g.Waypoints[0].Name != "UzAuto Oil" || g.Waypoints[1].Name != "Mustang" {
		t.Errorf("Unexpected waypoint order %q, %q", g.Waypoints[0].Name, g.Waypoints[1].Name)
	}
	if g.Waypoints[0].Latitude != 41.3432 || g.Waypoints[0].Longitude != 69.2854 {
		t.Errorf("Unexpected waypoint position %v", g.Waypoints[0].Point)
	}
}
