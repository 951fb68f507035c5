package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entity is required to exist and does not.
	ErrNotFound = errors.New("entity was not found")

	// ErrReferenceNotFound is returned when an entity referenced by id from another entity does not resolve.
	ErrReferenceNotFound = fmt.Errorf("%w: referenced entity", ErrNotFound)

	// ErrAlreadyConverted is returned when an event request was already turned into an event.
	ErrAlreadyConverted = fmt.Errorf("%w: event request already converted", ErrReferenceNotFound)

	// ErrConnectivity is returned when the store cannot be reached or did not answer in time.
	ErrConnectivity = errors.New("store is unreachable")

	// ErrProgramming marks errors caused by the call site (bad arguments combination, malformed ids).
	ErrProgramming = errors.New("programming error")

	// ErrEmptyFilter is returned when a lookup is requested without any identifying field.
	ErrEmptyFilter = fmt.Errorf("%w: lookup without filter fields", ErrProgramming)

	// ErrInvalidID is returned when an identifier is syntactically invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid identifier", ErrProgramming)

	// ErrCorruptRecord is returned when a stored document cannot be parsed into its entity.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrDuplicate is returned when a write would violate a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrValidation is returned when argument values are not acceptable.
	ErrValidation = errors.New("validation failed")

	// ErrCodeSpaceExhausted is returned when no free mail code was found within the attempt budget.
	ErrCodeSpaceExhausted = errors.New("no free mail code found")
)
