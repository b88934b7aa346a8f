package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MKuranowski/go-extra-lib/clock"

	"github.com/MarcoBuster/railway-opendata/internal/railapi"
	"github.com/MarcoBuster/railway-opendata/internal/trenord"
	"github.com/MarcoBuster/railway-opendata/internal/viaggiatreno"
)

// TrenordClientCode is the codiceCliente ViaggiaTreno assigns to
// Trenord-operated trains, the ones worth enriching from the secondary API.
const TrenordClientCode = 63

// DefaultSplitHour is the wall-clock hour separating "late evening of the
// service day" from "small hours of the next day" in naive Trenord times.
const DefaultSplitHour = 4

// departureDateShift compensates ViaggiaTreno's dataPartenzaTreno, which
// lands near midnight UTC and can read back as the previous calendar day.
const departureDateShift = 18000 * 1000 * time.Millisecond

// Train is the reconciled state of one train run.
type Train struct {
	Number        int    `json:"number"`
	Origin        string `json:"origin"`
	DepartureDate Date   `json:"departure_date"`

	Destination string `json:"destination,omitempty"`
	Category    string `json:"category,omitempty"`
	ClientCode  int    `json:"client_code"`

	Departed  bool    `json:"departed"`
	Cancelled bool    `json:"cancelled"`
	Stops     []*Stop `json:"stops,omitempty"`
	Delay     *int    `json:"delay,omitempty"`

	LastDetectionPlace string     `json:"last_detection_place,omitempty"`
	LastDetectionTime  *time.Time `json:"last_detection_time,omitempty"`

	Crowding       *float64 `json:"crowding,omitempty"`
	CrowdingSource string   `json:"crowding_source,omitempty"`

	// Phantom trains were announced on a departure board but have no
	// detail upstream; TrenordPhantom marks the same for the secondary
	// source only.
	Phantom        bool `json:"phantom,omitempty"`
	TrenordPhantom bool `json:"trenord_phantom,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// TrainKey identifies a train run. The triple is not unique on the rare
// days a number is reused from the same origin; later fetches then
// overwrite earlier ones.
type TrainKey struct {
	Number int
	Origin string
	Date   Date
}

// String formats k as number@origin@date.
func (k TrainKey) String() string {
	return fmt.Sprintf("%d@%s@%s", k.Number, k.Origin, k.Date)
}

// Key returns the identity of t. A train with no departure date, which
// should not happen, is keyed under today to stay addressable.
func (t *Train) Key() TrainKey {
	date := t.DepartureDate
	if date.IsZero() {
		date = DateOf(time.Now())
	}
	return TrainKey{Number: t.Number, Origin: t.Origin, Date: date}
}

// Arrived reports whether the train has reached a terminal state. known is
// false when there is no answer yet: the train was never fetched, is a
// phantom, or carries no stop in the "last" role. A cancelled train counts
// as arrived, there is nothing more to learn about it.
func (t *Train) Arrived() (arrived, known bool) {
	if t.FetchedAt.IsZero() || t.Phantom {
		return false, false
	}
	if t.Cancelled {
		return true, true
	}
	for _, s := range t.Stops {
		if s.Type == StopTypeLast {
			return s.Arrival.Passed(), true
		}
	}
	return false, false
}

// SecondaryAPI is the part of the Trenord client the scraper needs.
type SecondaryAPI interface {
	Train(ctx context.Context, number int) ([]trenord.TrainDocument, error)
}

// Engine fetches and reconciles train state from the primary source, with
// secondary-source enrichment for Trenord trains.
type Engine struct {
	Primary  PrimaryAPI
	Stations *Directory

	// Secondary may be nil; Trenord enrichment is then skipped.
	Secondary SecondaryAPI

	// Location is the timezone train times live in. Defaults to the
	// process-local zone.
	Location *time.Location

	// SplitHour defaults to DefaultSplitHour.
	SplitHour int

	// Clock defaults to clock.System.
	Clock clock.Interface

	Log *slog.Logger
}

func (e *Engine) location() *time.Location {
	if e.Location == nil {
		return time.Local
	}
	return e.Location
}

func (e *Engine) splitHour() int {
	if e.SplitHour == 0 {
		return DefaultSplitHour
	}
	return e.SplitHour
}

func (e *Engine) clock() clock.Interface {
	if e.Clock == nil {
		return clock.System
	}
	return e.Clock
}

func (e *Engine) log() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// TrainFromDeparture seeds a Train from a departure-board record. The
// record's departure epoch sits near midnight UTC, so it is nudged forward
// before the calendar date is taken.
func (e *Engine) TrainFromDeparture(rec viaggiatreno.DepartureRecord) *Train {
	departure := viaggiatreno.Time(rec.DepartureDateMillis, e.location()).Add(departureDateShift)
	return &Train{
		Number:        rec.Number,
		Origin:        rec.OriginCode,
		DepartureDate: DateOf(departure),
		Category:      strings.ToUpper(strings.TrimSpace(rec.Category)),
		ClientCode:    rec.ClientCode,
		Departed:      !rec.NotDeparted,
		Cancelled:     rec.Provision != 0 || strings.Contains(rec.NumberChangesImg, "cancellazione.png"),
	}
}

// Fetch refreshes t in place from the primary source, then enriches
// Trenord trains from the secondary source. A train the upstream has no
// detail for becomes a phantom rather than an error; only transport-level
// failures surface as errors.
func (e *Engine) Fetch(ctx context.Context, t *Train) error {
	log := e.log().With("train", t.Key().String())

	status, err := e.Primary.TrainStatus(ctx, t.Origin, t.Number, t.DepartureDate.Time(e.location()))
	if err != nil {
		var reqErr *railapi.RequestError
		if errors.As(err, &reqErr) {
			log.Debug("no train detail upstream, marking phantom", "err", err)
			t.Phantom = true
			t.FetchedAt = e.clock().Now()
			return nil
		}
		return err
	}

	if status.DestinationCode != "" {
		dest, err := e.Stations.ByCode(ctx, status.DestinationCode)
		if err != nil {
			var reqErr *railapi.RequestError
			if !errors.As(err, &reqErr) {
				return err
			}
			log.Warn("cannot resolve destination station", "station", status.DestinationCode, "err", err)
		} else {
			t.Destination = dest.Code
		}
	}

	if category := strings.ToUpper(strings.TrimSpace(status.Category)); t.Category == "" && category != "" {
		t.Category = category
	}
	t.ClientCode = status.ClientCode
	t.Departed = !status.NotDeparted
	t.Cancelled = t.Cancelled || status.Provision != 0

	t.Delay = nil
	if t.Departed {
		delay := status.Delay
		t.Delay = &delay
	}

	t.LastDetectionPlace = status.LastDetectionStation
	if t.LastDetectionPlace == viaggiatreno.NoDetectionSentinel {
		t.LastDetectionPlace = ""
	}
	t.LastDetectionTime = viaggiatreno.TimePtr(status.LastDetectionMillis, e.location())

	stops := make([]*Stop, 0, len(status.Stops))
	for _, rec := range status.Stops {
		stop, err := StopFromViaggiaTreno(ctx, e.Stations, rec, e.location())
		if err != nil {
			return err
		}
		stops = append(stops, stop)
	}
	t.Stops = stops
	t.FetchedAt = e.clock().Now()

	if t.ClientCode == TrenordClientCode {
		if err := e.fetchTrenord(ctx, t, log); err != nil {
			return err
		}
	}

	switch {
	case len(t.Stops) == 0:
		if !t.Cancelled {
			log.Warn("train has no stops and is not cancelled, marking phantom")
		}
		t.Phantom = true
	case len(t.Stops) < 2:
		log.Warn("train has a single stop, marking phantom")
		t.Phantom = true
	default:
		e.repairLastStop(t, log)
	}

	return nil
}

// repairLastStop handles an upstream defect where no stop of the list
// carries the "last" role: the last stop that is not cancelled and has an
// expected arrival is promoted to it. A journey whose eligible tail sits
// before index 2 counts as cancelled whole. Lists that already have a
// "last" stop are left alone.
func (e *Engine) repairLastStop(t *Train, log *slog.Logger) {
	for _, s := range t.Stops {
		if s.Type == StopTypeLast {
			return
		}
	}

	i := len(t.Stops) - 1
	for i > 0 {
		s := t.Stops[i]
		if s.Type != StopTypeCancelled && s.Arrival.Expected != nil {
			break
		}
		i--
	}
	if i < 2 {
		log.Warn("journey tail cancelled down to fewer than two stops, cancelling train")
		t.Cancelled = true
		return
	}
	log.Debug("promoting stop to journey end", "station", t.Stops[i].Station.Code, "index", i)
	t.Stops[i].Type = StopTypeLast
}

// fetchTrenord enriches t from the secondary source. Secondary failures
// never fail the fetch: an empty result set marks the train a Trenord
// phantom, everything else leaves it untouched with a warning. A train
// already marked Trenord phantom is never queried again.
func (e *Engine) fetchTrenord(ctx context.Context, t *Train, log *slog.Logger) error {
	if e.Secondary == nil || t.TrenordPhantom {
		return nil
	}

	docs, err := e.Secondary.Train(ctx, t.Number)
	if err != nil {
		var reqErr *railapi.RequestError
		if errors.As(err, &reqErr) {
			log.Warn("secondary source request failed", "err", err)
			return nil
		}
		return err
	}
	if len(docs) == 0 {
		log.Debug("train unknown to the secondary source, marking trenord phantom")
		t.TrenordPhantom = true
		return nil
	}

	journey := e.pickJourney(docs)
	if journey == nil {
		log.Warn("no journey with actual data in secondary source, keeping primary data")
		return nil
	}

	t.Departed = journey.Train.ActualTime != ""
	if c := journey.Train.Crowding; c != nil {
		t.Crowding = c.Percentage
		if c.Source != nil {
			t.CrowdingSource = *c.Source
		}
	}

	day := t.DepartureDate.Time(e.location())
	stops := make([]*Stop, 0, len(journey.PassList))
	for i, p := range journey.PassList {
		stop, err := StopFromTrenord(ctx, e.Stations, p, day, e.splitHour())
		if err != nil {
			if !errors.Is(err, ErrIncompleteStopData) {
				return err
			}
			// Fall back to the primary-source stop at the same position;
			// past the end of the primary list, keep what was rebuilt so
			// far.
			if i >= len(t.Stops) {
				log.Warn("incomplete secondary stop past the primary stops, keeping partial rebuild", "index", i)
				break
			}
			stop = t.Stops[i]
		}
		stops = append(stops, stop)
	}

	t.Stops = stops
	allCancelled := true
	for _, s := range stops {
		if s.Type != StopTypeCancelled {
			allCancelled = false
			break
		}
	}
	if allCancelled {
		t.Cancelled = true
	}
	t.FixIntradayTimes(e.splitHour())
	return nil
}

// pickJourney selects the first journey dated today that has a pass list
// with at least one observation. Documents mix journeys from several
// dates, including schedule-only ones for today.
func (e *Engine) pickJourney(docs []trenord.TrainDocument) *trenord.Journey {
	compact := DateOf(e.clock().Now().In(e.location())).Compact()
	for di := range docs {
		for ji := range docs[di].JourneyList {
			j := &docs[di].JourneyList[ji]
			if j.Train.Date != compact || len(j.PassList) == 0 {
				continue
			}
			for _, p := range j.PassList {
				if p.ActualData != nil {
					return j
				}
			}
		}
	}
	return nil
}

// FixIntradayTimes pushes small-hour stop times that precede the journey's
// first expected departure past midnight: the secondary source anchors all
// wall-clock times to the departure date, so a train crossing midnight
// comes back with its tail apparently earlier than its head. Times already
// after the reference are left alone, so the repair is idempotent.
func (t *Train) FixIntradayTimes(splitHour int) {
	if t.Phantom || t.TrenordPhantom || t.Cancelled || len(t.Stops) < 2 {
		return
	}

	first := -1
	for i, s := range t.Stops {
		if s.Departure.Expected != nil {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	ref := *t.Stops[first].Departure.Expected
	if ref.Hour() < splitHour {
		// The whole journey runs after midnight; its dates are already
		// consistent.
		return
	}
	for _, s := range t.Stops[first:] {
		s.Arrival.Expected = shiftPastMidnight(s.Arrival.Expected, ref, splitHour)
		s.Arrival.Actual = shiftPastMidnight(s.Arrival.Actual, ref, splitHour)
		s.Departure.Expected = shiftPastMidnight(s.Departure.Expected, ref, splitHour)
		s.Departure.Actual = shiftPastMidnight(s.Departure.Actual, ref, splitHour)
	}
}

func shiftPastMidnight(tm *time.Time, ref time.Time, splitHour int) *time.Time {
	if tm == nil || tm.Hour() >= splitHour || !tm.Before(ref) {
		return tm
	}
	shifted := tm.AddDate(0, 0, 1)
	return &shifted
}
