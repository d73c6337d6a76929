package scoring

import "errors"

var (
	// ErrInsufficientData means a required metric table was empty or
	// all-null. Recoverable: the affected sub-score becomes nil and the
	// composite reweights around it.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidInput means an input violated its documented range
	// (negative revenue, non-positive market cap). Recoverable: the
	// caller substitutes the documented default.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable means an ingestion collaborator failed. The
	// engine must not invent data: the protocol is skipped for this pass
	// and its last score record is left untouched.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
