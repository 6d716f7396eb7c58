// Package selection keeps the list and map surfaces of a session pointing
// at the same station. Every change goes through the session store and is
// published to the surfaces subscribed to that session.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/internal/ranking"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

// Surface is the UI surface a change originated from.
type Surface string

const (
	SurfaceList Surface = "list"
	SurfaceMap  Surface = "map"
)

type EventType string

const (
	EventSelected EventType = "selected"
	EventCleared  EventType = "cleared"
)

var (
	ErrNotInView      = errors.New("station is not in the current view")
	ErrUnknownSurface = errors.New("unknown surface")
)

// ParseSurface parses a surface name. An empty string means SurfaceList.
func ParseSurface(s string) (Surface, error) {
	switch Surface(s) {
	case "", SurfaceList:
		return SurfaceList, nil
	case SurfaceMap:
		return SurfaceMap, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSurface, s)
	}
}

// Event describes a selection change.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	StationID string    `json:"station_id,omitempty"`
	Surface   Surface   `json:"surface"`
	At        time.Time `json:"at"`
}

// StationSource provides the current station snapshot.
type StationSource interface {
	Stations(ctx context.Context) ([]api.Station, error)
}

type Synchronizer struct {
	sessions      session.Store
	stations      StationSource
	hub           *Hub
	log           *slog.Logger
	maxDistanceKm float64
}

// NewSynchronizer wires a session store, a station source and a hub.
// maxDistanceKm caps the radius of every view around the reference point,
// zero for no cap.
func NewSynchronizer(sessions session.Store, stations StationSource, hub *Hub, maxDistanceKm float64, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synchronizer{
		sessions:      sessions,
		stations:      stations,
		hub:           hub,
		log:           logger,
		maxDistanceKm: maxDistanceKm,
	}
}

// Options returns the ranking options of the session's current view.
func (s *Synchronizer) Options(sess *session.Session) ranking.Options {
	return ranking.Options{
		FuelType:      sess.FuelType,
		Sort:          sess.SortKey(),
		Reference:     sess.Reference,
		MaxDistanceKm: s.RadiusKm(sess.RadiusKm),
	}
}

// RadiusKm clamps a requested radius to the configured maximum. Zero
// means no radius and falls back to the maximum.
func (s *Synchronizer) RadiusKm(requested float64) float64 {
	if s.maxDistanceKm > 0 && (requested <= 0 || requested > s.maxDistanceKm) {
		return s.maxDistanceKm
	}
	if requested < 0 {
		return 0
	}
	return requested
}

// View ranks the current snapshot for the session.
func (s *Synchronizer) View(ctx context.Context, sess *session.Session) ([]api.RankedStation, error) {
	stations, err := s.stations.Stations(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading stations: %w", err)
	}
	return ranking.Rank(stations, s.Options(sess)), nil
}

// Refresh ranks the view of sess and drops its selection when the
// selected station is no longer part of it, as after a reference point
// move or a snapshot reload. sess is updated in place.
func (s *Synchronizer) Refresh(ctx context.Context, sess *session.Session) ([]api.RankedStation, error) {
	view, err := s.View(ctx, sess)
	if err != nil {
		return nil, err
	}
	if sess.Selection == "" || ranking.Contains(view, sess.Selection) {
		return view, nil
	}

	dropped := sess.Selection
	if err := sess.ClearSelection(); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.log.Debug("selected station left the view", "session", sess.ID, "station", dropped)
	s.publish(EventCleared, sess.ID, "", SurfaceList)
	return view, nil
}

// Select makes stationID the selection of the session. The station must be
// part of the session's current view.
func (s *Synchronizer) Select(ctx context.Context, sessionID, stationID string, surface Surface) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view, err := s.View(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !ranking.Contains(view, stationID) {
		return nil, fmt.Errorf("%w: %s", ErrNotInView, stationID)
	}

	if err := sess.Select(stationID); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.publish(EventSelected, sess.ID, stationID, surface)
	return sess, nil
}

// Clear removes the selection of the session.
func (s *Synchronizer) Clear(ctx context.Context, sessionID string, surface Surface) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.ClearSelection(); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.publish(EventCleared, sess.ID, "", surface)
	return sess, nil
}

// SetView changes the fuel filter, sort key and radius of the session.
// A change clears the selection.
func (s *Synchronizer) SetView(ctx context.Context, sessionID, fuelType string, sort ranking.SortKey, radiusKm float64) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cleared, err := sess.SetView(fuelType, sort, radiusKm)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	if cleared {
		s.publish(EventCleared, sess.ID, "", SurfaceList)
	}
	return sess, nil
}

// SetReference moves the reference point of the session. A selection the
// new point leaves outside the view is cleared.
func (s *Synchronizer) SetReference(ctx context.Context, sessionID string, p geo.Point, fallback bool) (*session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.SetReference(p, fallback); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	if _, err := s.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Synchronizer) publish(typ EventType, sessionID, stationID string, surface Surface) {
	ev := Event{
		Type:      typ,
		SessionID: sessionID,
		StationID: stationID,
		Surface:   surface,
		At:        time.Now().UTC(),
	}
	n := s.hub.Publish(ev)
	s.log.Debug("selection changed", "type", typ, "session", sessionID, "station", stationID, "surface", surface, "subscribers", n)
}
