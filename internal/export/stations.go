package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

var stationCSVHeader = []string{
	"code",
	"region",
	"long_name",
	"short_name",
	"latitude",
	"longitude",
}

// FillMissingPositions copies positions onto stations that lack one from a
// same-named station that has one, and returns how many were filled. The
// upstream lists some stations twice, once with coordinates and once
// without.
func FillMissingPositions(stations map[string]*scraper.Station) int {
	byName := make(map[string]*scraper.Position)
	for _, s := range stations {
		if s.Position != nil && s.Name != "" {
			byName[s.Name] = s.Position
		}
	}
	filled := 0
	for _, s := range stations {
		if s.Position != nil || s.Name == "" {
			continue
		}
		if pos, ok := byName[s.Name]; ok {
			p := *pos
			s.Position = &p
			filled++
		}
	}
	return filled
}

// WriteStationsCSV writes one row per station, ordered by code. Phantom
// stations are skipped.
func WriteStationsCSV(w io.Writer, stations map[string]*scraper.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationCSVHeader); err != nil {
		return err
	}
	for _, s := range sortedStations(stations) {
		lat, lon := "", ""
		if s.Position != nil {
			lat = strconv.FormatFloat(s.Position.Lat, 'f', -1, 64)
			lon = strconv.FormatFloat(s.Position.Lon, 'f', -1, 64)
		}
		record := []string{
			s.Code,
			strconv.Itoa(s.RegionCode),
			s.Name,
			s.ShortName,
			lat,
			lon,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStationsGeoJSON writes a FeatureCollection with one point feature
// per station with a known position.
func WriteStationsGeoJSON(w io.Writer, stations map[string]*scraper.Station) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range sortedStations(stations) {
		if s.Position == nil {
			continue
		}
		f := geojson.NewPointFeature([]float64{s.Position.Lon, s.Position.Lat})
		f.SetProperty("code", s.Code)
		f.SetProperty("region", s.RegionCode)
		f.SetProperty("long_name", s.Name)
		f.SetProperty("short_name", s.ShortName)
		fc.AddFeature(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func sortedStations(stations map[string]*scraper.Station) []*scraper.Station {
	list := make([]*scraper.Station, 0, len(stations))
	for _, s := range stations {
		if s.Phantom {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}
