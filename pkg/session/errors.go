package session

import "errors"

var (
	// ErrInvalidSession indicates a nil session or one without an id
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionNotFound indicates no session was found
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrNoArtifact indicates the request carried no credential artifact
	ErrNoArtifact = errors.New("session.no_artifact")

	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrStorageFailure indicates the durable table could not be written
	ErrStorageFailure = errors.New("session.storage_failure")

	// ErrUnknownStore indicates an unsupported SESSION_STORE value
	ErrUnknownStore = errors.New("session.unknown_store")
)
