// Package mapview computes what the map surface shows: center, zoom,
// markers and the popup of the selected station.
package mapview

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

const (
	BackendGoogle  = "google"
	BackendLeaflet = "leaflet"
)

const (
	googleOverviewZoom  = 11
	leafletOverviewZoom = 13
	SelectedZoom        = 15

	googleScriptURL = "https://maps.googleapis.com/maps/api/js"
	osmTileURL      = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmAttribution  = "© OpenStreetMap contributors"
)

var (
	ErrMissingAPIKey  = errors.New("map API key is not configured")
	ErrUnknownBackend = errors.New("unknown map backend")
)

// View is the input of a render: the ranked stations of a session and
// where the user is.
type View struct {
	Stations  []api.RankedStation
	Reference *geo.Point
	// Fallback centers the map when there is no reference point.
	Fallback  geo.Point
	Selection string
	Language  string
}

type Marker struct {
	StationID     string  `json:"station_id"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Title         string  `json:"title"`
	Selected      bool    `json:"selected"`
	DirectionsURL string  `json:"directions_url"`
}

type Popup struct {
	StationID     string   `json:"station_id"`
	Title         string   `json:"title"`
	Lines         []string `json:"lines"`
	DirectionsURL string   `json:"directions_url"`
}

// State is the map view model handed to the UI.
type State struct {
	Backend     string           `json:"backend"`
	ScriptURL   string           `json:"script_url,omitempty"`
	TileURL     string           `json:"tile_url,omitempty"`
	Attribution string           `json:"attribution,omitempty"`
	Center      api.Coordinates  `json:"center"`
	Zoom        int              `json:"zoom"`
	UserMarker  *api.Coordinates `json:"user_marker,omitempty"`
	Markers     []Marker         `json:"markers"`
	Popup       *Popup           `json:"popup,omitempty"`
}

// Renderer turns a View into map State for one map backend.
type Renderer interface {
	Backend() string
	Render(v View) (*State, error)
}

// New returns the renderer of a backend.
func New(backend, apiKey string) (Renderer, error) {
	switch strings.ToLower(backend) {
	case BackendGoogle:
		return &Google{APIKey: apiKey}, nil
	case BackendLeaflet, "":
		return &Leaflet{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

type Google struct {
	APIKey string
}

func (g *Google) Backend() string { return BackendGoogle }

// Render fails with ErrMissingAPIKey when no key is configured.
func (g *Google) Render(v View) (*State, error) {
	if g.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	st := render(v, googleOverviewZoom)
	st.Backend = BackendGoogle
	st.ScriptURL = googleScriptURL + "?key=" + url.QueryEscape(g.APIKey)
	return st, nil
}

type Leaflet struct{}

func (l *Leaflet) Backend() string { return BackendLeaflet }

func (l *Leaflet) Render(v View) (*State, error) {
	st := render(v, leafletOverviewZoom)
	st.Backend = BackendLeaflet
	st.TileURL = osmTileURL
	st.Attribution = osmAttribution
	return st, nil
}

func render(v View, overviewZoom int) *State {
	lang := i18n.Normalize(v.Language)
	st := &State{
		Center:  api.Coordinates{Lat: v.Fallback.Lat, Lng: v.Fallback.Lng},
		Zoom:    overviewZoom,
		Markers: make([]Marker, 0, len(v.Stations)),
	}

	if v.Reference != nil {
		st.Center = api.Coordinates{Lat: v.Reference.Lat, Lng: v.Reference.Lng}
		st.UserMarker = &api.Coordinates{Lat: v.Reference.Lat, Lng: v.Reference.Lng}
	}

	for i := range v.Stations {
		rs := &v.Stations[i]
		selected := rs.ID == v.Selection && v.Selection != ""
		st.Markers = append(st.Markers, Marker{
			StationID:     rs.ID,
			Lat:           rs.Lat,
			Lng:           rs.Lng,
			Title:         rs.Name.Get(lang),
			Selected:      selected,
			DirectionsURL: DirectionsURL(&rs.Station),
		})

		if selected {
			st.Center = api.Coordinates{Lat: rs.Lat, Lng: rs.Lng}
			st.Zoom = SelectedZoom
			st.Popup = popup(rs, lang)
		}
	}

	return st
}

// DirectionsURL returns the station's own directions link or a Google
// Maps link to its coordinates.
func DirectionsURL(st *api.Station) string {
	if st.DirectionsURL != "" {
		return st.DirectionsURL
	}
	return geo.DirectionsURL(geo.Point{Lat: st.Lat, Lng: st.Lng})
}

func popup(rs *api.RankedStation, lang string) *Popup {
	tr := i18n.GetTranslations(lang)
	p := &Popup{
		StationID:     rs.ID,
		Title:         rs.Name.Get(lang),
		DirectionsURL: DirectionsURL(&rs.Station),
	}

	if addr := rs.Address.Get(lang); addr != "" {
		p.Lines = append(p.Lines, addr)
	}
	if rs.DistanceKm != nil {
		p.Lines = append(p.Lines, i18n.FormatDistance(*rs.DistanceKm, lang))
	}
	if rs.Rating != nil {
		p.Lines = append(p.Lines, fmt.Sprintf("%s: ★ %.1f", tr.Rating, *rs.Rating))
	}
	p.Lines = append(p.Lines, PriceLines(&rs.Station, lang)...)
	if rs.OpenNow != nil && *rs.OpenNow {
		p.Lines = append(p.Lines, tr.OpenNow)
	}
	return p
}

// PriceLines formats the prices of a station in fuel type order.
func PriceLines(st *api.Station, lang string) []string {
	fuels := make([]string, 0, len(st.Prices))
	for fuel := range st.Prices {
		fuels = append(fuels, fuel)
	}
	sort.Strings(fuels)

	lines := make([]string, 0, len(fuels))
	for _, fuel := range fuels {
		lines = append(lines, fuel+": "+i18n.FormatPrice(st.Prices[fuel], lang))
	}
	return lines
}

// FormattedPrices maps fuel types to localized prices.
func FormattedPrices(st *api.Station, lang string) map[string]string {
	if len(st.Prices) == 0 {
		return nil
	}
	out := make(map[string]string, len(st.Prices))
	for fuel, p := range st.Prices {
		out[fuel] = i18n.FormatPrice(p, lang)
	}
	return out
}
