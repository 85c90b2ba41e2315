package userstore

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Record is one registered user. Records are immutable once created.
type Record struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	CreatedAt    time.Time
}

// Key returns the case-folded lookup key for a username. Two usernames that
// differ only in case share a key.
func Key(username string) string {
	return cases.Fold().String(strings.TrimSpace(username))
}

func (r Record) validate() error {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Username) == "" || r.PasswordHash == "" {
		return ErrInvalidRecord
	}
	return nil
}
