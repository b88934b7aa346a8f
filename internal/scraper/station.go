package scraper

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MarcoBuster/railway-opendata/internal/railapi"
	"github.com/MarcoBuster/railway-opendata/internal/viaggiatreno"
)

// PrimaryAPI is the part of the ViaggiaTreno client the scraper needs.
type PrimaryAPI interface {
	RegionCode(ctx context.Context, stationCode string) (int, error)
	StationDetail(ctx context.Context, stationCode string, regionCode int) (viaggiatreno.StationRecord, error)
	StationsByRegion(ctx context.Context, regionCode int) ([]viaggiatreno.StationRecord, error)
	Departures(ctx context.Context, stationCode string, when time.Time) ([]viaggiatreno.DepartureRecord, error)
	TrainStatus(ctx context.Context, originCode string, trainNumber int, departureMidnight time.Time) (viaggiatreno.TrainStatus, error)
}

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Station is a railway station as the scraper knows it. Phantom stations
// are codes the upstream referenced but has no detail for; they carry no
// name or position.
type Station struct {
	Code       string    `json:"code"`
	RegionCode int       `json:"region_code"`
	Name       string    `json:"name"`
	ShortName  string    `json:"short_name"`
	Position   *Position `json:"position,omitempty"`
	Phantom    bool      `json:"phantom,omitempty"`
}

var titleCaser = cases.Title(language.Italian)

// NewStation builds a Station from an upstream record, title-casing the
// shouty upstream names and keeping a position only when one is known. A
// record without a short name gets the long name as its short name.
func NewStation(rec viaggiatreno.StationRecord) *Station {
	s := &Station{
		Code:       rec.Code,
		RegionCode: rec.RegionCode,
		Name:       titleCaser.String(strings.TrimSpace(rec.Locality.LongName)),
		ShortName:  titleCaser.String(strings.TrimSpace(rec.Locality.ShortName)),
	}
	if s.ShortName == "" {
		s.ShortName = s.Name
	}
	if rec.Lat != 0 || rec.Lon != 0 {
		s.Position = &Position{Lat: rec.Lat, Lon: rec.Lon}
	}
	return s
}

// Directory resolves station codes to Stations, caching every resolution
// for the lifetime of the process. It is safe for concurrent use.
type Directory struct {
	api PrimaryAPI
	log *slog.Logger

	mu    sync.Mutex
	cache map[string]*Station
}

// NewDirectory builds an empty Directory backed by api.
func NewDirectory(api PrimaryAPI, log *slog.Logger) *Directory {
	return &Directory{
		api:   api,
		log:   log,
		cache: make(map[string]*Station),
	}
}

// Seed preloads the cache with previously persisted stations.
func (d *Directory) Seed(stations map[string]*Station) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for code, s := range stations {
		d.cache[code] = s
	}
}

// Snapshot returns a copy of the cache keyed by station code.
func (d *Directory) Snapshot() map[string]*Station {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]*Station, len(d.cache))
	for code, s := range d.cache {
		out[code] = s
	}
	return out
}

// ByCode resolves a single station code, asking the upstream for its region
// and detail on a cache miss. Codes the upstream has no detail for become
// cached phantom stations instead of errors.
func (d *Directory) ByCode(ctx context.Context, code string) (*Station, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.cache[code]; ok {
		return s, nil
	}

	region, err := d.api.RegionCode(ctx, code)
	if err != nil {
		if !railapi.IsNoContent(err) {
			return nil, err
		}
		region = 0
	}

	rec, err := d.api.StationDetail(ctx, code, region)
	if err != nil {
		if !railapi.IsNoContent(err) {
			return nil, err
		}
		s := &Station{Code: code, RegionCode: region, Phantom: true}
		d.cache[code] = s
		d.log.Debug("station has no detail, registering phantom", "station", code)
		return s, nil
	}

	return d.fromRawLocked(ctx, rec), nil
}

// ByRegion resolves every real station of a region, skipping placeholder
// entries, and caches them all.
func (d *Directory) ByRegion(ctx context.Context, regionCode int) ([]*Station, error) {
	recs, err := d.api.StationsByRegion(ctx, regionCode)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	stations := make([]*Station, 0, len(recs))
	for _, rec := range recs {
		if rec.StationType == viaggiatreno.PlaceholderStationType {
			continue
		}
		stations = append(stations, d.fromRawLocked(ctx, rec))
	}
	return stations, nil
}

// fromRawLocked caches rec as a Station, refreshing an already cached entry
// whose region disagrees with rec by asking the authoritative region
// endpoint once. Callers must hold d.mu.
func (d *Directory) fromRawLocked(ctx context.Context, rec viaggiatreno.StationRecord) *Station {
	if cached, ok := d.cache[rec.Code]; ok {
		if cached.RegionCode != rec.RegionCode {
			d.log.Warn("conflicting region codes for station",
				"station", rec.Code, "cached", cached.RegionCode, "listed", rec.RegionCode)
			if region, err := d.api.RegionCode(ctx, rec.Code); err == nil {
				cached.RegionCode = region
			}
		}
		return cached
	}
	s := NewStation(rec)
	d.cache[rec.Code] = s
	return s
}
