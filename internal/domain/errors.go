package domain

import "errors"

var (
	// ErrValidation marks malformed or missing caller input. Never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks an operation rejected by the current record state.
	ErrConflict = errors.New("conflict")
	// ErrConfigUnresolvable marks a dispatch for a tenant with no stored
	// configuration and no inline override. Nothing is sent in that case.
	ErrConfigUnresolvable = errors.New("tenant configuration unresolvable")
)
