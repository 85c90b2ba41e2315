package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Scheme identifies a password hashing algorithm.
type Scheme string

const (
	// SchemeBcrypt is the adaptive, salted scheme every new hash is written with.
	SchemeBcrypt Scheme = "bcrypt"
	// SchemeSHA256 is the legacy unsalted hex digest found in pre-migration records.
	SchemeSHA256 Scheme = "sha256"
)

// Hasher is one entry of the verification chain.
// Implementations must be safe for concurrent use.
type Hasher interface {
	Scheme() Scheme
	Hash(password string) (string, error)
	// Recognizes reports whether hash is self-described as this scheme.
	Recognizes(hash string) bool
	// Verify reports whether password matches hash. It is only consulted
	// after Recognizes returned true.
	Verify(password, hash string) bool
}

// maxBcryptInput is bcrypt's hard input limit in bytes.
const maxBcryptInput = 72

type bcryptHasher struct {
	cost int
}

// Bcrypt returns the bcrypt hasher. Costs outside bcrypt's accepted range
// fall back to bcrypt.DefaultCost.
func Bcrypt(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (bcryptHasher) Scheme() Scheme { return SchemeBcrypt }

func (h bcryptHasher) Hash(password string) (string, error) {
	if len(password) > maxBcryptInput {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", errors.Join(ErrHashFailed, err)
	}
	return string(b), nil
}

// Recognizes matches the $2a$, $2b$ and $2y$ modular-crypt prefixes.
func (bcryptHasher) Recognizes(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

func (bcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type sha256Hasher struct{}

// SHA256 returns the legacy hasher: lowercase hex of an unsalted SHA-256 digest.
func SHA256() Hasher { return sha256Hasher{} }

func (sha256Hasher) Scheme() Scheme { return SchemeSHA256 }

func (sha256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Recognizes accepts exactly 64 hex characters in either case.
func (sha256Hasher) Recognizes(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func (h sha256Hasher) Verify(password, hash string) bool {
	sum, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(sum), []byte(strings.ToLower(hash))) == 1
}
