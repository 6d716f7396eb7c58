// Package session holds the per-user view state: authentication, language,
// reference point, fuel filter, sort key and the selected station.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/ranking"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateLoading         State = "loading"
	StateReady           State = "ready"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotFound          = errors.New("session not found")
)

// Session is the state shared by the list and map surfaces of one user.
type Session struct {
	ID                string     `json:"id"`
	UserID            int64      `json:"user_id,omitempty"`
	UserName          string     `json:"user_name,omitempty"`
	Language          string     `json:"language"`
	State             State      `json:"state"`
	Reference         *geo.Point `json:"reference,omitempty"`
	ReferenceFallback bool       `json:"reference_fallback"`
	FuelType          string     `json:"fuel_type"`
	Sort              string     `json:"sort"`
	RadiusKm          float64    `json:"radius_km,omitempty"`
	Selection         string     `json:"selection,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// New returns an unauthenticated session with a fresh id.
func New(lang string) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Language: i18n.Normalize(lang),
	}
	s.resetView()
	s.touch()
	return s
}

func (s *Session) resetView() {
	s.State = StateUnauthenticated
	s.UserID = 0
	s.UserName = ""
	s.Reference = nil
	s.ReferenceFallback = false
	s.FuelType = ranking.FilterAll
	s.Sort = string(ranking.SortDistance)
	s.RadiusKm = 0
	s.Selection = ""
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) transitionError(op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, s.State)
}

// Login attaches a user and moves the session to loading.
func (s *Session) Login(userID int64, name string) error {
	if s.State != StateUnauthenticated {
		return s.transitionError("login")
	}
	s.UserID = userID
	s.UserName = name
	s.State = StateLoading
	s.touch()
	return nil
}

// SetReference stores the point distances are measured from. fallback
// marks the dataset default used when the user location is unavailable.
// The first reference point makes the session ready.
func (s *Session) SetReference(p geo.Point, fallback bool) error {
	if s.State == StateUnauthenticated {
		return s.transitionError("set reference")
	}
	s.Reference = &p
	s.ReferenceFallback = fallback
	s.State = StateReady
	s.touch()
	return nil
}

// SetView changes the fuel filter, the sort key and the search radius
// around the reference point (zero for no radius). Any actual change
// clears the selection; cleared reports whether a selection was dropped.
func (s *Session) SetView(fuelType string, sort ranking.SortKey, radiusKm float64) (cleared bool, err error) {
	if s.State == StateUnauthenticated {
		return false, s.transitionError("set view")
	}
	fuelType = ranking.NormalizeFuelType(fuelType)
	if sort == "" {
		sort = ranking.SortDistance
	}
	if radiusKm < 0 {
		radiusKm = 0
	}
	if fuelType == s.FuelType && string(sort) == s.Sort && radiusKm == s.RadiusKm {
		return false, nil
	}

	s.FuelType = fuelType
	s.Sort = string(sort)
	s.RadiusKm = radiusKm
	cleared = s.Selection != ""
	s.Selection = ""
	s.touch()
	return cleared, nil
}

// Select makes stationID the single selected station.
func (s *Session) Select(stationID string) error {
	if s.State != StateReady {
		return s.transitionError("select")
	}
	s.Selection = stationID
	s.touch()
	return nil
}

// ClearSelection removes the selection.
func (s *Session) ClearSelection() error {
	if s.State != StateReady {
		return s.transitionError("clear selection")
	}
	s.Selection = ""
	s.touch()
	return nil
}

// SetLanguage is allowed in every state and survives logout.
func (s *Session) SetLanguage(lang string) {
	s.Language = i18n.Normalize(lang)
	s.touch()
}

// Logout drops the user, the reference point, the view and the selection.
func (s *Session) Logout() {
	s.resetView()
	s.touch()
}

// SortKey returns the session sort key, distance when unset.
func (s *Session) SortKey() ranking.SortKey {
	key, err := ranking.ParseSortKey(s.Sort)
	if err != nil {
		return ranking.SortDistance
	}
	return key
}

// Info returns the public view of the session.
func (s *Session) Info() api.SessionInfo {
	info := api.SessionInfo{
		ID:                s.ID,
		State:             string(s.State),
		Language:          s.Language,
		FuelType:          s.FuelType,
		Sort:              s.Sort,
		RadiusKm:          s.RadiusKm,
		ReferenceFallback: s.ReferenceFallback,
		Selection:         s.Selection,
	}
	if s.Reference != nil {
		info.Reference = &api.Coordinates{Lat: s.Reference.Lat, Lng: s.Reference.Lng}
	}
	return info
}
