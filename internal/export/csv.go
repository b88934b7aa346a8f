package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

var trainCSVHeader = []string{
	"train_hash",
	"number",
	"day",
	"origin",
	"destination",
	"category",
	"client_code",
	"phantom",
	"trenord_phantom",
	"cancelled",
	"stop_number",
	"stop_station_code",
	"stop_type",
	"platform",
	"arrival_expected",
	"arrival_actual",
	"arrival_delay",
	"departure_expected",
	"departure_actual",
	"departure_delay",
	"crowding",
}

// WriteTrainsCSV writes one row per stop of every train, ordered by train
// key then stop position.
func WriteTrainsCSV(w io.Writer, trains map[scraper.TrainKey]*scraper.Train) error {
	keys := sortedKeys(trains)

	cw := csv.NewWriter(w)
	if err := cw.Write(trainCSVHeader); err != nil {
		return err
	}
	for _, key := range keys {
		for _, row := range TrainRows(trains[key]) {
			record := []string{
				row.TrainHash,
				strconv.Itoa(row.Number),
				row.Day.String(),
				row.Origin,
				row.Destination,
				row.Category,
				strconv.Itoa(row.ClientCode),
				strconv.FormatBool(row.Phantom),
				strconv.FormatBool(row.TrenordPhantom),
				strconv.FormatBool(row.Cancelled),
				strconv.Itoa(row.StopNumber),
				row.StopStationCode,
				string(row.StopType),
				row.Platform,
				formatTime(row.Arrival.Expected),
				formatTime(row.Arrival.Actual),
				formatDelay(row.Arrival.Delay()),
				formatTime(row.Departure.Expected),
				formatTime(row.Departure.Actual),
				formatDelay(row.Departure.Delay()),
				formatCrowding(row.Crowding),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedKeys(trains map[scraper.TrainKey]*scraper.Train) []scraper.TrainKey {
	keys := make([]scraper.TrainKey, 0, len(trains))
	for key := range trains {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDelay(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(*d, 'f', -1, 64)
}

func formatCrowding(c *float64) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *c)
}
