package fueldb

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed datasets/*.yaml
var datasetFS embed.FS

var (
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrInvalidStation = errors.New("invalid station")
)

var validate = validator.New()

// Dataset is a named station snapshot and the coordinate used when the
// user's location is unavailable.
type Dataset struct {
	Name     string
	Center   geo.Point
	Stations []api.Station
}

type datasetFile struct {
	Name   string `yaml:"name"`
	Center struct {
		Lat float64 `yaml:"lat"`
		Lng float64 `yaml:"lng"`
	} `yaml:"center"`
	Stations []stationRecord `yaml:"stations"`
}

type stationRecord struct {
	ID            string             `yaml:"id" validate:"required"`
	Name          localizedText      `yaml:"name" validate:"required"`
	Address       localizedText      `yaml:"address"`
	Lat           float64            `yaml:"lat"`
	Lng           float64            `yaml:"lng"`
	FuelTypes     []string           `yaml:"fuel_types" validate:"required,min=1,dive,required"`
	Prices        map[string]float64 `yaml:"prices" validate:"omitempty,dive,gte=0"`
	Price         *float64           `yaml:"price" validate:"omitempty,gte=0"`
	Rating        *float64           `yaml:"rating" validate:"omitempty,gte=0,lte=5"`
	OpenNow       *bool              `yaml:"open_now"`
	ImageURL      string             `yaml:"image_url"`
	DirectionsURL string             `yaml:"directions_url"`
}

type localizedText api.LocalizedText

func (t *localizedText) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = localizedText(api.Text(node.Value))
		return nil
	}
	var m map[string]string
	if err := node.Decode(&m); err != nil {
		return err
	}
	*t = m
	return nil
}

// DatasetNames lists the embedded datasets.
func DatasetNames() []string {
	entries, err := fs.ReadDir(datasetFS, "datasets")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadDataset returns an embedded dataset by name.
func LoadDataset(name string) (*Dataset, error) {
	data, err := datasetFS.ReadFile("datasets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return ParseDataset(data)
}

// LoadDatasetFile reads a dataset from a YAML file. An unnamed dataset
// takes the file name.
func LoadDatasetFile(file string) (*Dataset, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}
	ds, err := ParseDataset(data)
	if err != nil {
		return nil, err
	}
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return ds, nil
}

// ParseDataset decodes a YAML dataset. Records with a single price get
// that price for every fuel type they list.
func ParseDataset(data []byte) (*Dataset, error) {
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error decoding dataset: %w", err)
	}

	ds := &Dataset{
		Name:     f.Name,
		Center:   geo.Point{Lat: f.Center.Lat, Lng: f.Center.Lng},
		Stations: make([]api.Station, 0, len(f.Stations)),
	}
	for i := range f.Stations {
		rec := &f.Stations[i]
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d (%s): %v", ErrInvalidStation, i, rec.ID, err)
		}
		ds.Stations = append(ds.Stations, rec.station())
	}

	if err := CheckStations(ds.Stations); err != nil {
		return nil, err
	}
	return ds, nil
}

func (r *stationRecord) station() api.Station {
	st := api.Station{
		ID:            strings.TrimSpace(r.ID),
		Name:          api.LocalizedText(r.Name),
		Address:       api.LocalizedText(r.Address),
		Lat:           r.Lat,
		Lng:           r.Lng,
		FuelTypes:     r.FuelTypes,
		Rating:        r.Rating,
		OpenNow:       r.OpenNow,
		ImageURL:      r.ImageURL,
		DirectionsURL: r.DirectionsURL,
	}

	if len(r.Prices) > 0 || r.Price != nil {
		st.Prices = make(map[string]decimal.Decimal)
	}
	for fuel, p := range r.Prices {
		st.Prices[fuel] = decimal.NewFromFloat(p)
	}
	if r.Price != nil {
		for _, fuel := range r.FuelTypes {
			if _, ok := st.Prices[fuel]; !ok {
				st.Prices[fuel] = decimal.NewFromFloat(*r.Price)
			}
		}
	}
	return st
}

// CheckStations reports every station that breaks the snapshot rules:
// unique ids, at least one fuel type, non-negative prices and a rating
// between 0 and 5.
func CheckStations(stations []api.Station) error {
	var errs []error
	seen := make(map[string]bool, len(stations))

	for i := range stations {
		st := &stations[i]
		switch {
		case st.ID == "":
			errs = append(errs, fmt.Errorf("%w: station %d has no id", ErrInvalidStation, i))
		case seen[st.ID]:
			errs = append(errs, fmt.Errorf("%w: duplicate id %s", ErrInvalidStation, st.ID))
		}
		seen[st.ID] = true

		if len(st.FuelTypes) == 0 {
			errs = append(errs, fmt.Errorf("%w: station %s has no fuel types", ErrInvalidStation, st.ID))
		}
		for fuel, p := range st.Prices {
			if p.IsNegative() {
				errs = append(errs, fmt.Errorf("%w: station %s has negative %s price", ErrInvalidStation, st.ID, fuel))
			}
		}
		if st.Rating != nil && (*st.Rating < 0 || *st.Rating > 5) {
			errs = append(errs, fmt.Errorf("%w: station %s rating %.1f out of range", ErrInvalidStation, st.ID, *st.Rating))
		}
	}

	return errors.Join(errs...)
}
