// Package geocode resolves the reference point of a station search.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fuelfinder/internal/geo"
)

const (
	DefaultServer = "https://nominatim.openstreetmap.org/"

	cacheExpiry   = 24 * time.Hour
	cacheCleanup  = time.Hour
	searchTimeout = 10 * time.Second
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidLocation  = errors.New("invalid location")
)

// Query describes where the user is. Coordinates win over a place name;
// with neither, the fallback point is used.
type Query struct {
	Lat       float64
	Lng       float64
	HasCoords bool
	Location  string
}

type Result struct {
	Point    geo.Point
	Fallback bool
	// Name is the display name of a geocoded place.
	Name string
}

// SearchFunc looks up a place name and returns candidate results, best
// first.
type SearchFunc func(ctx context.Context, location string) ([]gominatim.SearchResult, error)

type Resolver struct {
	mu       sync.RWMutex
	fallback geo.Point
	search   SearchFunc
	cache    *cache.Cache
	log      *slog.Logger
}

// NewResolver returns a resolver geocoding through the Nominatim server
// at serverURL.
func NewResolver(serverURL string, fallback geo.Point, logger *slog.Logger) *Resolver {
	if serverURL == "" {
		serverURL = DefaultServer
	}
	gominatim.SetServer(serverURL)
	return NewResolverWithSearch(NominatimSearch, fallback, logger)
}

func NewResolverWithSearch(search SearchFunc, fallback geo.Point, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		fallback: fallback,
		search:   search,
		cache:    cache.New(cacheExpiry, cacheCleanup),
		log:      logger,
	}
}

// SetFallback changes the point used when the user's location is
// unknown.
func (r *Resolver) SetFallback(p geo.Point) {
	r.mu.Lock()
	r.fallback = p
	r.mu.Unlock()
}

func (r *Resolver) Fallback() geo.Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

func (r *Resolver) Resolve(ctx context.Context, q Query) (*Result, error) {
	if q.HasCoords {
		p := geo.Point{Lat: q.Lat, Lng: q.Lng}
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, p)
		}
		return &Result{Point: p}, nil
	}

	location := strings.TrimSpace(q.Location)
	if location == "" {
		return &Result{Point: r.Fallback(), Fallback: true}, nil
	}

	key := strings.ToLower(location)
	if cached, ok := r.cache.Get(key); ok {
		res := cached.(Result)
		return &res, nil
	}

	results, err := r.search(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("error geocoding %q: %w", location, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLocationNotFound, location)
	}

	p, err := resultPoint(results[0])
	if err != nil {
		return nil, err
	}
	res := Result{Point: p, Name: results[0].DisplayName}
	r.cache.Set(key, res, cache.DefaultExpiration)
	r.log.Debug("geocoded location", "location", location, "lat", p.Lat, "lng", p.Lng)

	return &res, nil
}

// NominatimSearch queries the configured Nominatim server. The client
// takes no context, so the lookup is abandoned, not cancelled, when ctx
// is done.
func NominatimSearch(ctx context.Context, location string) ([]gominatim.SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	type reply struct {
		results []gominatim.SearchResult
		err     error
	}
	ch := make(chan reply, 1)
	go func() {
		q := gominatim.SearchQuery{Q: location}
		results, err := q.Get()
		ch <- reply{results, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.results, r.err
	}
}

func resultPoint(result gominatim.SearchResult) (geo.Point, error) {
	lat, err := strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("error parsing latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("error parsing longitude: %w", err)
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}
