package fueldb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDatasetNames(t *testing.T) {
	names := DatasetNames()
	if len(names) != 2 || names[0] != "khorezm" || names[1] != "tashkent" {
		t.Errorf("DatasetNames() = %v, expected [khorezm tashkent]", names)
	}

	if _, err := LoadDataset("samarkand"); !errors.Is(err, ErrUnknownDataset) {
		t.Errorf("Expected ErrUnknownDataset, got %v", err)
	}
}

func TestLoadDatasets(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		lat, lng float64
	}{
		{"tashkent", 5, 41.2995, 69.2401},
		{"khorezm", 17, 41.5526, 60.6269},
	}

	for _, test := range tests {
		ds, err := LoadDataset(test.name)
		if err != nil {
			t.Fatalf("LoadDataset(%q) failed: %v", test.name, err)
		}
		if len(ds.Stations) != test.count {
			t.Errorf("%s: expected %d stations, got %d", test.name, test.count, len(ds.Stations))
		}
		if ds.Center.Lat != test.lat || ds.Center.Lng != test.lng {
			t.Errorf("%s: unexpected center %v", test.name, ds.Center)
		}
		for _, st := range ds.Stations {
			if len(st.FuelTypes) == 0 || st.Name.Get("en") == "" {
				t.Errorf("%s: incomplete station %+v", test.name, st)
			}
		}
	}
}

func TestParseDatasetScalarPrice(t *testing.T) {
	data := []byte(`
name: sample
center: {lat: 41.55, lng: 60.62}
stations:
  - id: "a"
    name: "Metan Toshbozor"
    lat: 41.5547
    lng: 60.6422
    fuel_types: [Metan, Diesel]
    price: 5500
  - id: "b"
    name: {uz: "Yoqilg'i", en: "Fuel"}
    lat: 41.55
    lng: 60.63
    fuel_types: [AI-92, AI-95]
    prices: {AI-92: 10200}
    price: 11000
`)

	ds, err := ParseDataset(data)
	if err != nil {
		t.Fatalf("ParseDataset() failed: %v", err)
	}

	a := ds.Stations[0]
	if len(a.Prices) != 2 {
		t.Fatalf("Expected scalar price for every fuel type, got %v", a.Prices)
	}
	for _, fuel := range []string{"Metan", "Diesel"} {
		if !a.Prices[fuel].Equal(decimal.NewFromInt(5500)) {
			t.Errorf("Expected %s price 5500, got %s", fuel, a.Prices[fuel])
		}
	}

	b := ds.Stations[1]
	if !b.Prices["AI-92"].Equal(decimal.NewFromInt(10200)) || !b.Prices["AI-95"].Equal(decimal.NewFromInt(11000)) {
		t.Errorf("Expected explicit prices to win over the scalar one, got %v", b.Prices)
	}
	if b.Name.Get("ru") != "Fuel" {
		t.Errorf("Expected English fallback, got %q", b.Name.Get("ru"))
	}
	if b.Rating != nil {
		t.Errorf("Expected absent rating, got %v", *b.Rating)
	}
}

func TestParseDatasetRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"duplicate id", `
stations:
  - {id: "1", name: "A", fuel_types: [AI-92]}
  - {id: "1", name: "B", fuel_types: [AI-95]}
`},
		{"no fuel types", `
stations:
  - {id: "1", name: "A", fuel_types: []}
`},
		{"negative price", `
stations:
  - {id: "1", name: "A", fuel_types: [AI-92], prices: {AI-92: -1}}
`},
		{"rating out of range", `
stations:
  - {id: "1", name: "A", fuel_types: [AI-92], rating: 5.5}
`},
		{"missing id", `
stations:
  - {name: "A", fuel_types: [AI-92]}
`},
	}

	for _, test := range tests {
		if _, err := ParseDataset([]byte(test.data)); !errors.Is(err, ErrInvalidStation) {
			t.Errorf("%s: expected ErrInvalidStation, got %v", test.name, err)
		}
	}
}

func TestLoadDatasetFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "urgench.yaml")
	data := []byte(`
center: {lat: 41.55, lng: 60.62}
stations:
  - {id: "1", name: "Chinobod oil", lat: 41.5598, lng: 60.627, fuel_types: [AI-92], price: 9500}
`)
	if err := os.WriteFile(file, data, 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := LoadDatasetFile(file)
	if err != nil {
		t.Fatalf("LoadDatasetFile() failed: %v", err)
	}
	if ds.Name != "urgench" || len(ds.Stations) != 1 {
		t.Errorf("Unexpected dataset %+v", ds)
	}

	if _, err := LoadDatasetFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
