package domain

import "errors"

var (
	// ErrUnknownField is returned when a field update names a key the report does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue is returned when an enumerated field receives a value outside its enumeration.
	ErrInvalidValue = errors.New("invalid value")

	// ErrMissingField is returned when a required field of a registry record is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrDuplicateEngineer is returned when a roster already holds an engineer with the same name.
	ErrDuplicateEngineer = errors.New("engineer already registered")

	// ErrInvalidCoordinates is returned when a latitude/longitude pair is out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)
