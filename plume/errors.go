package plume

import "errors"

var (
	// ErrNotConfigured is returned when a plume is initialized before its
	// parameters are set.
	ErrNotConfigured = errors.New("plume: parameters not set")
	// ErrSourceNotSet is returned when a source-dependent field is initialized
	// before the source is placed.
	ErrSourceNotSet = errors.New("plume: source position not set")
	// ErrNotInitialized is returned when sampling before Initialize.
	ErrNotInitialized = errors.New("plume: field not initialized")
	// ErrUnknownParam is returned for parameter names a variant does not accept.
	ErrUnknownParam = errors.New("plume: unknown parameter")
	// ErrMissingParam is returned when a required parameter is absent.
	ErrMissingParam = errors.New("plume: missing parameter")
	// ErrInvalidParam is returned for out-of-range parameter values.
	ErrInvalidParam = errors.New("plume: invalid parameter")
	// ErrIndexOutOfBounds is returned when an index lies outside the grid.
	ErrIndexOutOfBounds = errors.New("plume: index out of bounds")
	// ErrUnknownVariant is returned by the registry for unrecognized names.
	ErrUnknownVariant = errors.New("plume: unknown variant")
)
