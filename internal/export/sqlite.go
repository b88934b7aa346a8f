package export

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

//go:embed schema.sql
var schema string

// WriteTrainsSQLite upserts one row per stop of every train into a sqlite
// database at path, creating the schema when missing. Re-exporting the
// same day refreshes its rows in place.
func WriteTrainsSQLite(path string, trains map[scraper.TrainKey]*scraper.Train) error {
	db, err := sql.Open("sqlite", path+"?_journal=WAL&_fk=1&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stops (
			train_hash, number, day, origin, destination, category,
			client_code, phantom, trenord_phantom, cancelled,
			stop_number, stop_station_code, stop_type, platform,
			arrival_expected, arrival_actual, arrival_delay,
			departure_expected, departure_actual, departure_delay,
			crowding
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (train_hash, stop_number) DO UPDATE SET
			number = excluded.number,
			day = excluded.day,
			origin = excluded.origin,
			destination = excluded.destination,
			category = excluded.category,
			client_code = excluded.client_code,
			phantom = excluded.phantom,
			trenord_phantom = excluded.trenord_phantom,
			cancelled = excluded.cancelled,
			stop_station_code = excluded.stop_station_code,
			stop_type = excluded.stop_type,
			platform = excluded.platform,
			arrival_expected = excluded.arrival_expected,
			arrival_actual = excluded.arrival_actual,
			arrival_delay = excluded.arrival_delay,
			departure_expected = excluded.departure_expected,
			departure_actual = excluded.departure_actual,
			departure_delay = excluded.departure_delay,
			crowding = excluded.crowding
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stopCount := 0
	for _, key := range sortedKeys(trains) {
		for _, row := range TrainRows(trains[key]) {
			_, err := stmt.Exec(
				row.TrainHash,
				row.Number,
				row.Day.String(),
				row.Origin,
				nullString(row.Destination),
				nullString(row.Category),
				row.ClientCode,
				row.Phantom,
				row.TrenordPhantom,
				row.Cancelled,
				row.StopNumber,
				row.StopStationCode,
				string(row.StopType),
				nullString(row.Platform),
				nullTime(row.Arrival.Expected),
				nullTime(row.Arrival.Actual),
				nullFloat(row.Arrival.Delay()),
				nullTime(row.Departure.Expected),
				nullTime(row.Departure.Actual),
				nullFloat(row.Departure.Delay()),
				nullFloat(row.Crowding),
			)
			if err != nil {
				return fmt.Errorf("upsert stop %s/%d: %w", row.TrainHash, row.StopNumber, err)
			}
			stopCount++
		}
	}

	_, err = tx.Exec(
		"INSERT INTO export_runs (id, exported_at, train_count, stop_count) VALUES (?, ?, ?, ?)",
		uuid.NewString(), time.Now().Format(time.RFC3339), len(trains), stopCount,
	)
	if err != nil {
		return fmt.Errorf("record export run: %w", err)
	}

	return tx.Commit()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
