package scraper

import "errors"

var (
	// ErrMalformedStop marks stop data that violates the shape every real
	// stop has: a first stop without an expected departure, an intermediate
	// stop missing expected times, and so on.
	ErrMalformedStop = errors.New("malformed stop data")

	// ErrIncompleteStopData marks a secondary-source stop that cannot be
	// used at all, typically because it does not identify its station.
	ErrIncompleteStopData = errors.New("incomplete stop data")
)
