// Package ranking filters and orders stations for display. The first
// element of a ranked sequence is the recommended station.
package ranking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rubiojr/fuelfinder/internal/geo"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

// SortKey selects the ordering of a ranked sequence.
type SortKey string

const (
	SortDistance SortKey = "distance"
	SortPrice    SortKey = "price"
	SortRating   SortKey = "rating"
)

// FilterAll keeps every station regardless of fuel type.
const FilterAll = api.FuelTypeAll

var ErrUnknownSortKey = errors.New("unknown sort key")

// ParseSortKey parses a sort key. An empty string means SortDistance.
func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case "":
		return SortDistance, nil
	case SortDistance, SortPrice, SortRating:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
}

// NormalizeFuelType maps an empty filter to FilterAll.
func NormalizeFuelType(fuelType string) string {
	fuelType = strings.TrimSpace(fuelType)
	if fuelType == "" || strings.EqualFold(fuelType, FilterAll) {
		return FilterAll
	}
	return fuelType
}

// Options controls a ranking.
type Options struct {
	FuelType string
	Sort     SortKey
	// Reference enables distance attachment and distance sorting.
	Reference *geo.Point
	// MaxDistanceKm drops stations farther than this from Reference.
	// Zero disables the radius.
	MaxDistanceKm float64
}

// Filter keeps the stations selling fuelType, preserving input order.
func Filter(stations []api.Station, fuelType string) []api.Station {
	fuelType = NormalizeFuelType(fuelType)

	out := make([]api.Station, 0, len(stations))
	for i := range stations {
		if fuelType == FilterAll || stations[i].HasFuel(fuelType) {
			out = append(out, stations[i])
		}
	}
	return out
}

// Rank filters stations, attaches distances when a reference point is
// given and stable-sorts the survivors. Without a reference point a
// distance sort keeps input order.
func Rank(stations []api.Station, opts Options) []api.RankedStation {
	filtered := Filter(stations, opts.FuelType)

	ranked := make([]api.RankedStation, 0, len(filtered))
	for _, st := range filtered {
		rs := api.RankedStation{Station: st}
		if opts.Reference != nil {
			d := opts.Reference.DistanceTo(geo.Point{Lat: st.Lat, Lng: st.Lng})
			if opts.MaxDistanceKm > 0 && d > opts.MaxDistanceKm {
				continue
			}
			rs.DistanceKm = &d
		}
		ranked = append(ranked, rs)
	}

	switch opts.Sort {
	case SortPrice:
		sort.SliceStable(ranked, func(i, j int) bool {
			return cheaper(&ranked[i].Station, &ranked[j].Station)
		})
	case SortRating:
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].RatingOrZero() > ranked[j].RatingOrZero()
		})
	case SortDistance, "":
		if opts.Reference != nil {
			sort.SliceStable(ranked, func(i, j int) bool {
				return *ranked[i].DistanceKm < *ranked[j].DistanceKm
			})
		}
	}

	return ranked
}

// Best returns the head of a ranked sequence.
func Best(ranked []api.RankedStation) (api.RankedStation, bool) {
	if len(ranked) == 0 {
		return api.RankedStation{}, false
	}
	return ranked[0], true
}

// Contains reports whether stationID is part of ranked.
func Contains(ranked []api.RankedStation, stationID string) bool {
	for i := range ranked {
		if ranked[i].ID == stationID {
			return true
		}
	}
	return false
}

// stations without any price sort after priced ones
func cheaper(a, b *api.Station) bool {
	pa, okA := a.MinPrice()
	pb, okB := b.MinPrice()
	switch {
	case okA && okB:
		return pa.LessThan(pb)
	case okA:
		return true
	default:
		return false
	}
}
