package mapview

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rubiojr/fuelfinder/internal/i18n"
	"github.com/rubiojr/fuelfinder/pkg/api"
	"github.com/tkrajina/gpxgo/gpx"
)

const gpxCreator = "fuelfinder"

// WriteGPX writes the stations as GPX 1.1 waypoints, in ranking order.
func WriteGPX(w io.Writer, stations []api.RankedStation, lang string) error {
	lang = i18n.Normalize(lang)
	now := time.Now().UTC()

	g := &gpx.GPX{
		Version: "1.1",
		Creator: gpxCreator,
		Name:    i18n.GetTranslations(lang).FindNearestStations,
		Time:    &now,
	}

	for i := range stations {
		rs := &stations[i]
		wpt := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  rs.Lat,
				Longitude: rs.Lng,
			},
			Name:        rs.Name.Get(lang),
			Description: strings.Join(PriceLines(&rs.Station, lang), "; "),
			Comment:     DirectionsURL(&rs.Station),
			Type:        strings.Join(rs.FuelTypes, ","),
			Symbol:      "Gas Station",
		}
		if rs.DistanceKm != nil {
			wpt.Source = i18n.FormatDistance(*rs.DistanceKm, lang)
		}
		g.Waypoints = append(g.Waypoints, wpt)
	}

	data, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return fmt.Errorf("error encoding GPX: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("error writing GPX: %w", err)
	}
	return nil
}
