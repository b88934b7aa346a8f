// Package export flattens reconciled train and station state into analysis
// formats: per-stop CSV and sqlite for trains, CSV and GeoJSON for
// stations.
package export

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

// StopRow is one train stop flattened for tabular output. Train-level
// fields repeat on every row of the same train.
type StopRow struct {
	TrainHash      string
	Number         int
	Day            scraper.Date
	Origin         string
	Destination    string
	Category       string
	ClientCode     int
	Phantom        bool
	TrenordPhantom bool
	Cancelled      bool

	StopNumber      int
	StopStationCode string
	StopType        scraper.StopType
	Platform        string

	Arrival   scraper.StopTime
	Departure scraper.StopTime

	Crowding *float64
}

// TrainHash is a stable opaque identifier for a train run, usable to group
// and join rows without exposing the key itself.
func TrainHash(k scraper.TrainKey) string {
	sum := md5.Sum([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}

// TrainRows flattens a train into one row per stop. A train without stops
// yields no rows.
func TrainRows(t *scraper.Train) []StopRow {
	key := t.Key()
	hash := TrainHash(key)
	rows := make([]StopRow, 0, len(t.Stops))
	for i, stop := range t.Stops {
		platform := stop.PlatformActual
		if platform == "" {
			platform = stop.PlatformExpected
		}
		rows = append(rows, StopRow{
			TrainHash:       hash,
			Number:          t.Number,
			Day:             key.Date,
			Origin:          t.Origin,
			Destination:     t.Destination,
			Category:        t.Category,
			ClientCode:      t.ClientCode,
			Phantom:         t.Phantom,
			TrenordPhantom:  t.TrenordPhantom,
			Cancelled:       t.Cancelled,
			StopNumber:      i,
			StopStationCode: stop.Station.Code,
			StopType:        stop.Type,
			Platform:        platform,
			Arrival:         stop.Arrival,
			Departure:       stop.Departure,
			Crowding:        t.Crowding,
		})
	}
	return rows
}
