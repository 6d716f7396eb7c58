package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rubiojr/fuelfinder/internal/fueldb"
	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/internal/geocode"
	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/internal/mapview"
	"github.com/rubiojr/fuelfinder/internal/ranking"
	"github.com/rubiojr/fuelfinder/internal/selection"
	"github.com/rubiojr/fuelfinder/internal/session"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

// handleStations ranks the stations of the session. fuel, sort and
// radius change the session view; lat/lng or location move its reference
// point. A session without reference gets the fallback point.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	sess, err := s.applyView(ctx, sessionFromContext(ctx), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lq, given, err := locationQuery(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if given || sess.Reference == nil {
		if sess, err = s.updateReference(ctx, sess, lq); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	list, err := s.stationList(ctx, sess, requestLanguage(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFromContext(ctx)

	st, err := s.Store.Station(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rs := api.RankedStation{Station: *st}
	if sess.Reference != nil {
		d := sess.Reference.DistanceTo(geo.Point{Lat: st.Lat, Lng: st.Lng})
		rs.DistanceKm = &d
	}
	rs.FormattedPrices = mapview.FormattedPrices(st, requestLanguage(r))

	s.writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LocationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var lq geocode.Query
	switch {
	case req.Denied:
	case req.Lat != nil && req.Lng != nil:
		lq = geocode.Query{Lat: *req.Lat, Lng: *req.Lng, HasCoords: true}
	case req.Lat != nil || req.Lng != nil:
		s.writeError(w, r, fmt.Errorf("%w: lat and lng go together", errBadRequest))
		return
	default:
		lq = geocode.Query{Location: req.Location}
	}

	sess, err := s.updateReference(ctx, sessionFromContext(ctx), lq)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		s.writeError(w, r, err)
		return
	}
	surface, err := selection.ParseSurface(req.Surface)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.Sync.Select(ctx, sessionFromContext(ctx).ID, req.StationID, surface)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	surface, err := selection.ParseSurface(r.URL.Query().Get("surface"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.Sync.Clear(ctx, sessionFromContext(ctx).ID, surface)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.Hub.ServeWS(w, r, sessionFromContext(r.Context()).ID, s.log)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFromContext(ctx)

	if s.Maps == nil {
		s.writeError(w, r, mapview.ErrUnknownBackend)
		return
	}

	ranked, err := s.Sync.Refresh(ctx, sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state, err := s.Maps.Render(mapview.View{
		Stations:  ranked,
		Reference: sess.Reference,
		Fallback:  s.Resolver.Fallback(),
		Selection: sess.Selection,
		Language:  requestLanguage(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleStationsGPX(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFromContext(ctx)

	ranked, err := s.Sync.Refresh(ctx, sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="stations.gpx"`)
	if err := mapview.WriteGPX(w, ranked, requestLanguage(r)); err != nil {
		s.log.Error("error writing GPX", "error", err)
	}
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := defaultPopularLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: limit %q", errBadRequest, v))
			return
		}
		limit = n
	}

	popular, err := s.Store.GetPopularLocationHeatmap(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if popular == nil {
		popular = []fueldb.PopularLocation{}
	}
	s.writeJSON(w, http.StatusOK, popular)
}

// applyView changes the fuel filter, sort order and radius of the
// session when the query names them.
func (s *Server) applyView(ctx context.Context, sess *session.Session, q url.Values) (*session.Session, error) {
	if !q.Has("fuel") && !q.Has("sort") && !q.Has("radius") {
		return sess, nil
	}

	fuel := sess.FuelType
	if q.Has("fuel") {
		fuel = q.Get("fuel")
	}
	sortKey := sess.SortKey()
	if q.Has("sort") {
		var err error
		if sortKey, err = ranking.ParseSortKey(q.Get("sort")); err != nil {
			return nil, err
		}
	}
	radius := sess.RadiusKm
	if q.Has("radius") {
		var err error
		if radius, err = parseRadius(q.Get("radius")); err != nil {
			return nil, err
		}
	}

	return s.Sync.SetView(ctx, sess.ID, fuel, sortKey, radius)
}

// updateReference resolves lq and moves the reference point of the
// session there. Searches from a real location are logged for the
// popularity heatmap.
func (s *Server) updateReference(ctx context.Context, sess *session.Session, lq geocode.Query) (*session.Session, error) {
	res, err := s.Resolver.Resolve(ctx, lq)
	if err != nil {
		return nil, err
	}

	sess, err = s.Sync.SetReference(ctx, sess.ID, res.Point, res.Fallback)
	if err != nil {
		return nil, err
	}

	if !res.Fallback {
		radius := s.Sync.Options(sess).MaxDistanceKm
		if err := s.Store.LogSearchLocation(ctx, res.Point.Lat, res.Point.Lng, radius); err != nil {
			s.log.Warn("error logging search location", "error", err)
		}
	}
	return sess, nil
}

// stationList ranks the session view, the same sequence the map, the GPX
// export and the selection check work on.
func (s *Server) stationList(ctx context.Context, sess *session.Session, lang string) (*api.StationList, error) {
	ranked, err := s.Sync.Refresh(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		ranked[i].FormattedPrices = mapview.FormattedPrices(&ranked[i].Station, lang)
	}

	list := &api.StationList{
		Stations:          ranked,
		FuelType:          sess.FuelType,
		Sort:              sess.Sort,
		RadiusKm:          s.Sync.Options(sess).MaxDistanceKm,
		ReferenceFallback: sess.ReferenceFallback,
		Selection:         sess.Selection,
	}
	if best, ok := ranking.Best(ranked); ok {
		list.Best = &best
		list.BestLabel = i18n.GetTranslations(lang).BestStation
	}
	if sess.Reference != nil {
		list.Reference = &api.Coordinates{Lat: sess.Reference.Lat, Lng: sess.Reference.Lng}
	}
	return list, nil
}

func parseRadius(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	radius, err := strconv.ParseFloat(v, 64)
	if err != nil || radius < 0 {
		return 0, fmt.Errorf("%w: radius %q", errBadRequest, v)
	}
	return radius, nil
}

// locationQuery reads lat/lng or location from the query. given is
// false when neither is present.
func locationQuery(q url.Values) (lq geocode.Query, given bool, err error) {
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	switch {
	case latStr != "" && lngStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return lq, false, fmt.Errorf("%w: invalid latitude", errBadRequest)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return lq, false, fmt.Errorf("%w: invalid longitude", errBadRequest)
		}
		return geocode.Query{Lat: lat, Lng: lng, HasCoords: true}, true, nil
	case latStr != "" || lngStr != "":
		return lq, false, fmt.Errorf("%w: lat and lng go together", errBadRequest)
	case q.Get("location") != "":
		return geocode.Query{Location: q.Get("location")}, true, nil
	}
	return lq, false, nil
}
