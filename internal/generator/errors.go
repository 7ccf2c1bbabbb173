package generator

import "errors"

// Generation error types
var (
	// ErrMissingRelation is returned when a belongs-to parent has no record
	// in the relation registry
	ErrMissingRelation = errors.New("belongs-to resource is not registered")

	// ErrNoFieldsProvided is returned when a migration is requested without fields
	ErrNoFieldsProvided = errors.New("no fields provided")

	// ErrMarkerNotFound is returned when the router file does not contain
	// exactly one run marker line
	ErrMarkerNotFound = errors.New("router marker not found")

	// ErrAlreadyExists is returned when an artifact would overwrite an
	// existing file and overwriting is disabled
	ErrAlreadyExists = errors.New("file already exists")
)
