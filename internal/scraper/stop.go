package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/trenord"
	"github.com/MarcoBuster/railway-opendata/internal/viaggiatreno"
)

// StopType classifies a stop's role within a journey.
type StopType string

const (
	StopTypeFirst        StopType = "P"
	StopTypeIntermediate StopType = "F"
	StopTypeLast         StopType = "A"
	StopTypeCancelled    StopType = "C"
)

// stopTypeFromPrimary maps ViaggiaTreno's tipoFermata to a StopType.
// Anything unrecognized counts as cancelled.
func stopTypeFromPrimary(raw string) StopType {
	switch raw {
	case "P", "F", "A":
		return StopType(raw)
	default:
		return StopTypeCancelled
	}
}

// stopTypeFromSecondary maps Trenord's pass type to a StopType.
func stopTypeFromSecondary(raw string) StopType {
	switch raw {
	case "O":
		return StopTypeFirst
	case "F":
		return StopTypeIntermediate
	case "D":
		return StopTypeLast
	default:
		return StopTypeCancelled
	}
}

// StopTime pairs the expected and the observed time of one event of a stop.
// Either side may be unknown.
type StopTime struct {
	Expected *time.Time `json:"expected"`
	Actual   *time.Time `json:"actual"`
}

// Passed reports whether the event has been observed.
func (st StopTime) Passed() bool {
	return st.Actual != nil
}

// Delay returns the observed delay in minutes, negative when early, or nil
// when either side is unknown.
func (st StopTime) Delay() *float64 {
	if st.Expected == nil || st.Actual == nil {
		return nil
	}
	d := st.Actual.Sub(*st.Expected).Minutes()
	return &d
}

// Stop is one station call of a train.
type Stop struct {
	Station          *Station `json:"station"`
	Type             StopType `json:"type"`
	PlatformExpected string   `json:"platform_expected,omitempty"`
	PlatformActual   string   `json:"platform_actual,omitempty"`
	Arrival          StopTime `json:"arrival"`
	Departure        StopTime `json:"departure"`
}

// NewStop assembles a Stop, enforcing the shape every non-cancelled stop
// has: a first stop needs an expected departure, a last stop an expected
// arrival, an intermediate stop both. Cancelled stops carry no times.
func NewStop(station *Station, typ StopType, platformExpected, platformActual string, arrival, departure StopTime) (*Stop, error) {
	s := &Stop{
		Station:          station,
		Type:             typ,
		PlatformExpected: platformExpected,
		PlatformActual:   platformActual,
		Arrival:          arrival,
		Departure:        departure,
	}
	switch typ {
	case StopTypeCancelled:
		s.Arrival = StopTime{}
		s.Departure = StopTime{}
	case StopTypeFirst:
		if departure.Expected == nil {
			return nil, fmt.Errorf("first stop at %s lacks an expected departure: %w", station.Code, ErrMalformedStop)
		}
	case StopTypeLast:
		if arrival.Expected == nil {
			return nil, fmt.Errorf("last stop at %s lacks an expected arrival: %w", station.Code, ErrMalformedStop)
		}
	default:
		if arrival.Expected == nil || departure.Expected == nil {
			return nil, fmt.Errorf("intermediate stop at %s lacks expected times: %w", station.Code, ErrMalformedStop)
		}
	}
	return s, nil
}

// StopFromViaggiaTreno converts one andamentoTreno stop record. The record's
// platform fields prefer the arrival side and fall back to the departure
// side, matching how the upstream populates them.
func StopFromViaggiaTreno(ctx context.Context, dir *Directory, rec viaggiatreno.StopRecord, loc *time.Location) (*Stop, error) {
	station, err := dir.ByCode(ctx, rec.StationCode)
	if err != nil {
		return nil, err
	}

	platformExpected := rec.PlatformExpectedArrival
	if platformExpected == "" {
		platformExpected = rec.PlatformExpectedDeparture
	}
	platformActual := rec.PlatformActualArrival
	if platformActual == "" {
		platformActual = rec.PlatformActualDeparture
	}

	return NewStop(
		station,
		stopTypeFromPrimary(rec.StopType),
		platformExpected,
		platformActual,
		StopTime{
			Expected: viaggiatreno.TimePtr(rec.ArrivalExpectedMillis, loc),
			Actual:   viaggiatreno.TimePtr(rec.ArrivalActualMillis, loc),
		},
		StopTime{
			Expected: viaggiatreno.TimePtr(rec.DepartureExpectedMillis, loc),
			Actual:   viaggiatreno.TimePtr(rec.DepartureActualMillis, loc),
		},
	)
}

// StopFromTrenord converts one pass_list entry against a service day. The
// entry's cancelled flag overrides its pass type. Entries that do not
// identify their station at all yield ErrIncompleteStopData.
func StopFromTrenord(ctx context.Context, dir *Directory, p trenord.Passing, day time.Time, splitHour int) (*Stop, error) {
	if p.Station == nil {
		return nil, fmt.Errorf("pass entry has no station: %w", ErrIncompleteStopData)
	}
	code := p.Station.Code
	if code == "" {
		code = p.Station.ID
	}
	if code == "" {
		return nil, fmt.Errorf("pass entry has no station code: %w", ErrIncompleteStopData)
	}

	station, err := dir.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	typ := stopTypeFromSecondary(p.Type)
	if p.Cancelled {
		typ = StopTypeCancelled
	}

	arrivalExpected, err := trenord.ParseClockTime(p.ArrivalTime, day, splitHour)
	if err != nil {
		return nil, err
	}
	departureExpected, err := trenord.ParseClockTime(p.DepartureTime, day, splitHour)
	if err != nil {
		return nil, err
	}
	var arrivalActual, departureActual *time.Time
	platformActual := ""
	if p.ActualData != nil {
		arrivalActual, err = trenord.ParseClockTime(p.ActualData.ArrivalTime, day, splitHour)
		if err != nil {
			return nil, err
		}
		departureActual, err = trenord.ParseClockTime(p.ActualData.DepartureTime, day, splitHour)
		if err != nil {
			return nil, err
		}
		platformActual = p.ActualData.Platform
	}

	return NewStop(
		station,
		typ,
		p.Platform,
		platformActual,
		StopTime{Expected: arrivalExpected, Actual: arrivalActual},
		StopTime{Expected: departureExpected, Actual: departureActual},
	)
}
