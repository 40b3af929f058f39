package domain

import "errors"

// Sentinel errors for conditions a caller needs to distinguish. The
// detectors return no errors: input-domain degeneracies (empty sequences,
// zero variance, short windows) resolve to zero-valued results. Of these
// values, only ErrTransportTimeout and ErrTransportUnavailable are
// returned by code in this module, by the vector-store adapter.
var (
	// ErrEmptyInput names an operation that required at least one data
	// point and received none.
	ErrEmptyInput = errors.New("vsmengine: empty input")

	// ErrInsufficientData names an analysis whose input was shorter than
	// the method's minimum. Causal screening skips such pairs without
	// returning it.
	ErrInsufficientData = errors.New("vsmengine: insufficient data for this analysis")

	// ErrTransportTimeout is returned by the vector-store adapter when a
	// request exceeds its configured timeout.
	ErrTransportTimeout = errors.New("vsmengine: vector store request timed out")

	// ErrTransportUnavailable is returned when the vector store cannot be
	// reached at all (connection refused, DNS failure) or responds with a
	// non-2xx status.
	ErrTransportUnavailable = errors.New("vsmengine: vector store unavailable")
)
