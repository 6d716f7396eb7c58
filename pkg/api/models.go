package api

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LocalizedText is either plain text or a language -> text mapping.
// Plain text is stored under the empty key.
type LocalizedText map[string]string

// Text returns a plain, non-localized value.
func Text(s string) LocalizedText {
	return LocalizedText{"": s}
}

// Get returns the text for lang, falling back to English, the plain
// value and finally any value in key order.
func (t LocalizedText) Get(lang string) string {
	for _, key := range []string{lang, "en", ""} {
		if v, ok := t[key]; ok && v != "" {
			return v
		}
	}

	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if t[k] != "" {
			return t[k]
		}
	}
	return ""
}

func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if plain, ok := t[""]; ok && len(t) == 1 {
		return json.Marshal(plain)
	}
	return json.Marshal(map[string]string(t))
}

func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*t = Text(plain)
		return nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*t = m
	return nil
}

// Station is a fuel-selling location. Prices are keyed by fuel type.
type Station struct {
	ID            string                     `json:"id"`
	Name          LocalizedText              `json:"name"`
	Address       LocalizedText              `json:"address"`
	Lat           float64                    `json:"lat"`
	Lng           float64                    `json:"lng"`
	FuelTypes     []string                   `json:"fuel_types"`
	Prices        map[string]decimal.Decimal `json:"prices,omitempty"`
	Rating        *float64                   `json:"rating,omitempty"`
	OpenNow       *bool                      `json:"open_now,omitempty"`
	ImageURL      string                     `json:"image_url,omitempty"`
	DirectionsURL string                     `json:"directions_url,omitempty"`
}

// HasFuel reports whether the station sells fuelType.
func (s *Station) HasFuel(fuelType string) bool {
	for _, ft := range s.FuelTypes {
		if ft == fuelType {
			return true
		}
	}
	return false
}

// MinPrice returns the cheapest price across all fuel types. ok is false
// when the station has no prices.
func (s *Station) MinPrice() (price decimal.Decimal, ok bool) {
	for _, p := range s.Prices {
		if !ok || p.LessThan(price) {
			price = p
			ok = true
		}
	}
	return price, ok
}

// RatingOrZero returns the rating, treating an absent one as 0.
func (s *Station) RatingOrZero() float64 {
	if s.Rating == nil {
		return 0
	}
	return *s.Rating
}

// RankedStation is a Station positioned in a ranked sequence.
type RankedStation struct {
	Station
	DistanceKm      *float64          `json:"distance_km,omitempty"`
	FormattedPrices map[string]string `json:"formatted_prices,omitempty"`
}

// StationList is the response of the stations endpoint.
type StationList struct {
	Stations          []RankedStation `json:"stations"`
	Best              *RankedStation  `json:"best,omitempty"`
	BestLabel         string          `json:"best_label,omitempty"`
	FuelType          string          `json:"fuel_type"`
	Sort              string          `json:"sort"`
	RadiusKm          float64         `json:"radius_km,omitempty"`
	Reference         *Coordinates    `json:"reference,omitempty"`
	ReferenceFallback bool            `json:"reference_fallback"`
	Selection         string          `json:"selection,omitempty"`
}

// Coordinates is a latitude/longitude pair on the wire.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Review is a star rating left for a station.
type Review struct {
	ID        int64     `json:"id"`
	StationID string    `json:"station_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewSummary aggregates the reviews of one station.
type ReviewSummary struct {
	StationID string   `json:"station_id"`
	Count     int      `json:"count"`
	Average   *float64 `json:"average,omitempty"`
}

// ReviewList is the response of the reviews endpoint.
type ReviewList struct {
	Reviews []Review      `json:"reviews"`
	Summary ReviewSummary `json:"summary"`
}

// NewReview is the payload used to add a review.
type NewReview struct {
	UserName string `json:"user_name" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment"`
}

// SignupRequest registers a user.
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,contains=@"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest starts a session.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,contains=@"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the session token.
type AuthResponse struct {
	Token   string      `json:"token"`
	Session SessionInfo `json:"session"`
}

// SessionInfo is the public view of a session.
type SessionInfo struct {
	ID                string       `json:"id"`
	State             string       `json:"state"`
	Language          string       `json:"language"`
	FuelType          string       `json:"fuel_type"`
	Sort              string       `json:"sort"`
	RadiusKm          float64      `json:"radius_km,omitempty"`
	Reference         *Coordinates `json:"reference,omitempty"`
	ReferenceFallback bool         `json:"reference_fallback"`
	Selection         string       `json:"selection,omitempty"`
}

// LocationRequest sets the reference point of a session. Denied marks a
// refused or unsupported browser geolocation.
type LocationRequest struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Location string   `json:"location"`
	Denied   bool     `json:"denied"`
}

// SelectionRequest selects a station from the list or map surface.
type SelectionRequest struct {
	StationID string `json:"station_id" validate:"required"`
	Surface   string `json:"surface" validate:"omitempty,oneof=list map"`
}

// LanguageRequest changes the session language.
type LanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

// MapsConfig is the map backend configuration handed to the UI.
type MapsConfig struct {
	Backend string `json:"backend"`
	APIKey  string `json:"api_key,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
