package viaggiatreno

import "time"

// Time converts a ViaggiaTreno millisecond epoch to a time in loc.
func Time(ms int64, loc *time.Location) time.Time {
	return time.UnixMilli(ms).In(loc)
}

// TimePtr converts an optional millisecond epoch to an optional time.
// ViaggiaTreno omits timestamps it does not know by sending null.
func TimePtr(ms *int64, loc *time.Location) *time.Time {
	if ms == nil {
		return nil
	}
	t := Time(*ms, loc)
	return &t
}
