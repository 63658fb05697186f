package engine

import "errors"

var (
	// ErrConfiguration indicates an invalid request: an impossible
	// mode/method combination or a missing required field.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDestinationConflict indicates the destination already holds content
	// and overwrite was not requested.
	ErrDestinationConflict = errors.New("destination already exists")

	// ErrDestinationBusy indicates the destination could not be cleared for
	// overwrite, typically because another process holds it open.
	ErrDestinationBusy = errors.New("destination could not be cleared")

	// ErrSampleNotFound indicates the requested sample does not exist in the
	// repository at the requested ref, whichever strategy looked for it.
	ErrSampleNotFound = errors.New("sample not found")
)
