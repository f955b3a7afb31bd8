package domain

import (
	"errors"
	"fmt"
)

// ErrNotOpened is returned when collections are used before the store was
// opened.
var ErrNotOpened = errors.New("store is not opened")

// ErrMissingID is returned by Insert when the document carries no identifier
// field.
var ErrMissingID = errors.New("document has no _id field")

// ErrNonArrayField is returned by the modifier when a push or pull targets a
// field holding a non-array value.
type ErrNonArrayField struct {
	Path string
	Op   string
}

func (e ErrNonArrayField) Error() string {
	return fmt.Sprintf("cannot %s on non-array field %s", e.Op, e.Path)
}

// ErrDecode wraps third-party decoding errors so callers can match them as
// one kind.
type ErrDecode struct {
	Err error
}

func (e ErrDecode) Error() string { return fmt.Sprintf("decoding: %v", e.Err) }

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrHashFormat is returned when a stored password hash cannot be parsed back
// into its algorithm parameters.
type ErrHashFormat struct {
	Reason string
}

func (e ErrHashFormat) Error() string {
	return fmt.Sprintf("malformed password hash: %s", e.Reason)
}
