package fuel

import "errors"

var (
	// ErrUnreachable is returned when a document could not be fetched or the
	// server answered with a non-success status.
	ErrUnreachable = errors.New("price data unreachable")

	// ErrEmptyOrMalformed is returned when a document was fetched but decoded
	// to nothing usable.
	ErrEmptyOrMalformed = errors.New("price data is empty or in wrong format")

	// ErrNoData is returned when there is no latest snapshot with station data.
	ErrNoData = errors.New("no current price data available")

	// ErrNoDataForSelection is returned when the latest snapshot has no open
	// station with a valid price for the selected fuel kind.
	ErrNoDataForSelection = errors.New("no open stations with prices for this fuel kind")

	// ErrInsufficientHistory is returned when fewer than two snapshots exist.
	ErrInsufficientHistory = errors.New("not enough price history for a recommendation")

	// ErrNotLoaded is returned when no session has been loaded yet.
	ErrNotLoaded = errors.New("price data not loaded")

	// ErrNegativePrice is returned when a negative price is split for display.
	ErrNegativePrice = errors.New("price must not be negative")
)
