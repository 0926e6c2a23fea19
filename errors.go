package templeton

import "errors"

var (
	// ErrUnexpectedClose is returned when a close or continuation marker
	// appears while no block is open.
	ErrUnexpectedClose = errors.New("block marker without an open block")

	// ErrMismatchedBlock is returned when a close marker names neither the
	// innermost open block nor its latest continuation.
	ErrMismatchedBlock = errors.New("mismatched block close")

	// ErrUnclosedBlock is returned when a template ends with blocks still
	// open.
	ErrUnclosedBlock = errors.New("unclosed block")

	// ErrUnknownBlock is returned when a block names a behavior that was
	// never registered.
	ErrUnknownBlock = errors.New("unknown block helper")

	// ErrInvalidSigil is returned when registering a ref under a character
	// that can start an ordinary key or is part of the marker syntax.
	ErrInvalidSigil = errors.New("invalid ref sigil")
)
