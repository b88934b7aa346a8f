// Package store persists scraper state as JSON files under a data
// directory: a global stations file plus one directory per service day
// holding that day's train collections.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

// Store is a file-backed scraper.Datastore rooted at a directory.
type Store struct {
	dir string
}

// New builds a Store rooted at dir. The directory is created on first
// write, not here.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) stationsPath() string {
	return filepath.Join(s.dir, "stations.json")
}

func (s *Store) trainsPath(day scraper.Date, collection string) string {
	return filepath.Join(s.dir, day.String(), collection+".json")
}

// LoadStations reads the global stations file. A missing file yields an
// empty map.
func (s *Store) LoadStations() (map[string]*scraper.Station, error) {
	var stations []*scraper.Station
	if err := loadJSON(s.stationsPath(), &stations); err != nil {
		return nil, err
	}
	byCode := make(map[string]*scraper.Station, len(stations))
	for _, station := range stations {
		byCode[station.Code] = station
	}
	return byCode, nil
}

// SaveStations writes the global stations file, sorted by code.
func (s *Store) SaveStations(stations map[string]*scraper.Station) error {
	list := make([]*scraper.Station, 0, len(stations))
	for _, station := range stations {
		list = append(list, station)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return saveJSON(s.stationsPath(), list)
}

// LoadTrains reads one collection of a service day, rebuilding the key of
// each train. A missing file yields an empty map.
func (s *Store) LoadTrains(day scraper.Date, collection string) (map[scraper.TrainKey]*scraper.Train, error) {
	var trains []*scraper.Train
	if err := loadJSON(s.trainsPath(day, collection), &trains); err != nil {
		return nil, err
	}
	byKey := make(map[scraper.TrainKey]*scraper.Train, len(trains))
	for _, t := range trains {
		byKey[t.Key()] = t
	}
	return byKey, nil
}

// SaveTrains writes one collection of a service day in key order.
func (s *Store) SaveTrains(day scraper.Date, collection string, trains map[scraper.TrainKey]*scraper.Train) error {
	list := make([]*scraper.Train, 0, len(trains))
	for _, t := range trains {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key().String() < list[j].Key().String() })
	return saveJSON(s.trainsPath(day, collection), list)
}

// LoadTrainsFile reads any trains file, independent of a Store's layout.
func LoadTrainsFile(path string) (map[scraper.TrainKey]*scraper.Train, error) {
	var trains []*scraper.Train
	if err := loadJSON(path, &trains); err != nil {
		return nil, err
	}
	byKey := make(map[scraper.TrainKey]*scraper.Train, len(trains))
	for _, t := range trains {
		byKey[t.Key()] = t
	}
	return byKey, nil
}

// LoadStationsFile reads any stations file, independent of a Store's layout.
func LoadStationsFile(path string) (map[string]*scraper.Station, error) {
	var stations []*scraper.Station
	if err := loadJSON(path, &stations); err != nil {
		return nil, err
	}
	byCode := make(map[string]*scraper.Station, len(stations))
	for _, station := range stations {
		byCode[station.Code] = station
	}
	return byCode, nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// saveJSON writes v to path via a temporary file in the same directory, so
// readers never observe a partial file.
func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
