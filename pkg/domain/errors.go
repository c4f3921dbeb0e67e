package domain

import "errors"

// Error taxonomy for image creation. The worker collapses all of these into
// the shared errored flag; the typed reason additionally travels back on the
// Creator's return value.
var (
	ErrImageExists  = errors.New("image file already exists")
	ErrCannotCreate = errors.New("cannot create image file")
	ErrWriteFailed  = errors.New("image write failed")
	ErrCanceled     = errors.New("image creation canceled")
	ErrInFlight     = errors.New("image creation already started")
)
