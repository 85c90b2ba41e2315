package auth

import "errors"

// Caller-facing errors. Lower-level causes are joined onto these, so both
// errors.Is(err, auth.ErrX) and errors.Is(err, userstore.ErrY) hold.
var (
	ErrConflict       = errors.New("auth: username already exists")
	ErrUnauthorized   = errors.New("auth: invalid username or password")
	ErrInvalid        = errors.New("auth: invalid credential")
	ErrCorrupt        = errors.New("auth: corrupt record")
	ErrStorageFailure = errors.New("auth: storage failure")
	ErrInvalidInput   = errors.New("auth: invalid input")
)

// Detail errors joined onto the ones above.
var (
	ErrRevoked   = errors.New("auth: credential revoked")
	ErrMalformed = errors.New("auth: malformed credential")
	ErrAnonymous = errors.New("auth: anonymous identity")
)

// Configuration errors.
var (
	ErrUnknownStrategy = errors.New("auth: unknown credential strategy")
	ErrMissingSecret   = errors.New("auth: token strategy requires a signing secret")
)
