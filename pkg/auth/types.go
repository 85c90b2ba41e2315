package auth

import (
	"errors"
	"time"

	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Strategy names how credentials are issued and checked.
type Strategy string

const (
	// StrategySession issues opaque ids backed by a session store.
	StrategySession Strategy = "session"
	// StrategyToken issues self-contained signed tokens.
	StrategyToken Strategy = "token"
)

// Default credential lifetimes per strategy.
const (
	DefaultSessionTTL = 24 * time.Hour
	DefaultTokenTTL   = 7 * 24 * time.Hour
)

// Identity is the principal a request acts as. The zero value is Anonymous.
type Identity struct {
	UserID    string
	Username  string
	Email     string
	CreatedAt time.Time
}

// Anonymous is the identity of a request without a valid credential.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// Credential is an issued artifact together with what it grants.
type Credential struct {
	Strategy  Strategy
	Artifact  string
	Subject   string
	ExpiresAt time.Time
}

// TTL returns the remaining lifetime at now, never negative.
func (c Credential) TTL(now time.Time) time.Duration {
	return max(c.ExpiresAt.Sub(now), 0)
}

func identityFromRecord(rec userstore.Record) Identity {
	return Identity{
		UserID:    rec.ID,
		Username:  rec.Username,
		Email:     rec.Email,
		CreatedAt: rec.CreatedAt,
	}
}

// storeError maps a userstore error onto the auth taxonomy.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, userstore.ErrConflict):
		return errors.Join(ErrConflict, err)
	case errors.Is(err, userstore.ErrInvalidRecord):
		return errors.Join(ErrInvalidInput, err)
	case errors.Is(err, userstore.ErrCorrupt):
		return errors.Join(ErrCorrupt, err)
	default:
		return errors.Join(ErrStorageFailure, err)
	}
}
