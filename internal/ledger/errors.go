package ledger

import "errors"

var (
	// ErrMatchNotFound is returned when an edit or delete references a
	// match id that does not exist for the tenant.
	ErrMatchNotFound = errors.New("match not found")

	// ErrMalformedRecord is returned when a score or name:count string
	// cannot be parsed. It aborts the operation instead of silently
	// producing wrong counts.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnknownField is returned for an edit targeting a field that is
	// not part of a match.
	ErrUnknownField = errors.New("unknown match field")
)
