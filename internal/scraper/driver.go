package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/MKuranowski/go-extra-lib/clock"
	"github.com/google/uuid"
)

// Collection names under which a day's trains are persisted. Fetched holds
// finalized trains (arrived, cancelled or phantom); unfetched holds trains
// that are still running or failed to fetch, to be re-fetched next run.
const (
	CollectionFetched   = "trains"
	CollectionUnfetched = "unfetched"
)

// serviceDayLag shifts "now" backwards when picking the service day, so
// that runs in the small hours still work on the previous day's trains.
const serviceDayLag = 3 * time.Hour

// Datastore persists the scraper's keyed collections between runs.
type Datastore interface {
	LoadStations() (map[string]*Station, error)
	SaveStations(stations map[string]*Station) error
	LoadTrains(day Date, collection string) (map[TrainKey]*Train, error)
	SaveTrains(day Date, collection string, trains map[TrainKey]*Train) error
}

// RunStats summarizes one scrape run.
type RunStats struct {
	ServiceDay Date
	Stations   int
	Discovered int
	Retried    int
	Fetched    int
	Unfetched  int
}

// Driver runs complete scrape passes: re-fetch trains still in flight,
// discover new ones from every region's departure boards, and persist the
// result. Trains converge into the fetched collection over successive runs
// as they finalize.
type Driver struct {
	Engine *Engine
	Store  Datastore

	// Region codes to sweep, both ends inclusive.
	RegionMin, RegionMax int

	// Clock defaults to clock.System.
	Clock clock.Interface

	Log *slog.Logger
}

func (d *Driver) clock() clock.Interface {
	if d.Clock == nil {
		return clock.System
	}
	return d.Clock
}

func (d *Driver) log() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}

// Run performs one scrape pass. Failures of individual regions, stations
// and trains are logged and skipped; only datastore failures and context
// cancellation abort the run.
func (d *Driver) Run(ctx context.Context) (*RunStats, error) {
	log := d.log().With("run", uuid.NewString())

	now := d.clock().Now().In(d.Engine.location())
	day := DateOf(now.Add(-serviceDayLag))
	log.Info("starting scrape run", "service_day", day.String())

	stations, err := d.Store.LoadStations()
	if err != nil {
		return nil, err
	}
	d.Engine.Stations.Seed(stations)

	fetched, err := d.Store.LoadTrains(day, CollectionFetched)
	if err != nil {
		return nil, err
	}
	unfetched, err := d.Store.LoadTrains(day, CollectionUnfetched)
	if err != nil {
		return nil, err
	}

	stats := &RunStats{ServiceDay: day}
	stats.Retried = d.retryPass(ctx, fetched, unfetched, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats.Discovered = d.discoveryPass(ctx, now, fetched, unfetched, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapshot := d.Engine.Stations.Snapshot()
	if err := d.Store.SaveStations(snapshot); err != nil {
		return nil, err
	}
	if err := d.Store.SaveTrains(day, CollectionFetched, fetched); err != nil {
		return nil, err
	}
	if err := d.Store.SaveTrains(day, CollectionUnfetched, unfetched); err != nil {
		return nil, err
	}

	stats.Stations = len(snapshot)
	stats.Fetched = len(fetched)
	stats.Unfetched = len(unfetched)
	log.Info("scrape run complete",
		"stations", stats.Stations,
		"discovered", stats.Discovered,
		"retried", stats.Retried,
		"fetched", stats.Fetched,
		"unfetched", stats.Unfetched)
	return stats, nil
}

// finalized reports whether t has nothing more to learn: it is a phantom
// or it has reached its terminal state. Only finalized trains move into
// the fetched collection; the rest stay unfetched so the next run
// re-fetches them.
func finalized(t *Train) bool {
	if t.Phantom {
		return true
	}
	arrived, _ := t.Arrived()
	return arrived
}

// retryPass re-fetches every previously unfetched train, moving the ones
// that finalized into fetched. The map is mutated only after iteration
// completes.
func (d *Driver) retryPass(ctx context.Context, fetched, unfetched map[TrainKey]*Train, log *slog.Logger) int {
	done := make([]TrainKey, 0, len(unfetched))
	for key, t := range unfetched {
		if ctx.Err() != nil {
			break
		}
		if err := d.Engine.Fetch(ctx, t); err != nil {
			log.Warn("retry fetch failed", "train", key.String(), "err", err)
			continue
		}
		if !finalized(t) {
			continue
		}
		fetched[key] = t
		done = append(done, key)
	}
	for _, key := range done {
		delete(unfetched, key)
	}
	return len(done)
}

// discoveryPass sweeps every region's stations' departure boards for trains
// not seen yet this service day and fetches each one.
func (d *Driver) discoveryPass(ctx context.Context, now time.Time, fetched, unfetched map[TrainKey]*Train, log *slog.Logger) int {
	discovered := 0
	for region := d.RegionMin; region <= d.RegionMax; region++ {
		if ctx.Err() != nil {
			return discovered
		}
		stations, err := d.Engine.Stations.ByRegion(ctx, region)
		if err != nil {
			log.Warn("cannot list stations of region", "region", region, "err", err)
			continue
		}
		for _, station := range stations {
			if ctx.Err() != nil {
				return discovered
			}
			departures, err := d.Engine.Primary.Departures(ctx, station.Code, now)
			if err != nil {
				log.Warn("cannot read departure board", "station", station.Code, "err", err)
				continue
			}
			for _, rec := range departures {
				if ctx.Err() != nil {
					return discovered
				}
				t := d.Engine.TrainFromDeparture(rec)
				key := t.Key()
				if _, ok := fetched[key]; ok {
					continue
				}
				if _, ok := unfetched[key]; ok {
					continue
				}
				discovered++
				if err := d.Engine.Fetch(ctx, t); err != nil {
					log.Warn("train fetch failed", "train", key.String(), "err", err)
					unfetched[key] = t
					continue
				}
				if finalized(t) {
					fetched[key] = t
				} else {
					unfetched[key] = t
				}
			}
		}
	}
	return discovered
}
