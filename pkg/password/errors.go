package password

import "errors"

var (
	ErrPasswordTooLong = errors.New("password: longer than 72 bytes")
	ErrHashFailed      = errors.New("password: hashing failed")
	ErrEmptyChain      = errors.New("password: verification chain is empty")
)
