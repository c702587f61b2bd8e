package portions

import "errors"

var (
	// ErrInvalidInput is returned for out-of-range inputs when strict validation is on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownGroup is returned when a group id is not in the rules table.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrInvalidRules is returned by NewPlanner for an inconsistent rules table.
	ErrInvalidRules = errors.New("invalid rules")
)
