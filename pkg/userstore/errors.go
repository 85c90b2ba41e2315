package userstore

import "errors"

var (
	// ErrConflict is returned by Create when the case-folded username is taken.
	ErrConflict = errors.New("userstore: username already exists")
	// ErrNotFound is returned by lookups that match no record.
	ErrNotFound = errors.New("userstore: user not found")
	// ErrInvalidRecord is returned by Create for an empty username or hash.
	ErrInvalidRecord = errors.New("userstore: username and password hash are required")
	// ErrCorrupt marks a durable record that could not be decoded. Such
	// records are skipped and logged, never returned.
	ErrCorrupt = errors.New("userstore: corrupt record")
	// ErrStorageFailure wraps any failed durable write or read.
	ErrStorageFailure = errors.New("userstore: storage failure")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("userstore: unknown driver")
)
