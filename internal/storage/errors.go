package storage

import "errors"

// Sentinel errors shared by the shop, order-history and simulation-run stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a record whose key already
	// exists. Simulation IDs are deterministic, so rerunning an identical
	// request is expected to hit this; callers treat it as already-archived.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
