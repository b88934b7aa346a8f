package export

import (
	"time"

	"github.com/MarcoBuster/railway-opendata/internal/scraper"
)

// maxExpectedActualGap is the largest plausible distance between an
// expected and an observed time of the same event. Bigger gaps mean the
// upstream glued together two unrelated runs.
const maxExpectedActualGap = 24 * time.Hour

// Sanitize repairs known upstream defects in loaded trains before export:
// stop times stamped in the wrong century, small-hour times of Trenord
// trains left on the wrong day, and trains whose expected and observed
// times are more than a day apart, which become phantoms.
func Sanitize(trains map[scraper.TrainKey]*scraper.Train, splitHour int, loc *time.Location) {
	for key, t := range trains {
		fixCentury(t, key.Date, loc)
		if t.ClientCode == scraper.TrenordClientCode {
			t.FixIntradayTimes(splitHour)
		}
		if hasImplausibleGap(t) {
			t.Phantom = true
		}
	}
}

// fixCentury rebases stop times whose year predates 2000 onto the train's
// departure date, keeping the wall-clock part. The upstream occasionally
// stamps times in 1970 or 1900.
func fixCentury(t *scraper.Train, day scraper.Date, loc *time.Location) {
	fix := func(tm *time.Time) *time.Time {
		if tm == nil || tm.Year() >= 2000 {
			return tm
		}
		fixed := time.Date(day.Year, day.Month, day.Day,
			tm.Hour(), tm.Minute(), tm.Second(), 0, loc)
		return &fixed
	}
	for _, s := range t.Stops {
		s.Arrival.Expected = fix(s.Arrival.Expected)
		s.Arrival.Actual = fix(s.Arrival.Actual)
		s.Departure.Expected = fix(s.Departure.Expected)
		s.Departure.Actual = fix(s.Departure.Actual)
	}
}

func hasImplausibleGap(t *scraper.Train) bool {
	gap := func(st scraper.StopTime) bool {
		if st.Expected == nil || st.Actual == nil {
			return false
		}
		d := st.Actual.Sub(*st.Expected)
		if d < 0 {
			d = -d
		}
		return d > maxExpectedActualGap
	}
	for _, s := range t.Stops {
		if gap(s.Arrival) || gap(s.Departure) {
			return true
		}
	}
	return false
}
