package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/authcore/pkg/password"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// Inspection is a diagnostic report on one stored password hash.
type Inspection struct {
	Username   string
	Exists     bool
	Match      bool
	Scheme     password.Scheme
	HashPrefix string
}

// UserSummary is a user as shown in admin listings. PasswordHash is masked.
type UserSummary struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

const inspectPrefixLen = 10

// InspectUser reports whether username exists, whether password matches its
// hash, which scheme the hash uses and the first characters of the hash.
func (s *Service) InspectUser(ctx context.Context, username, pw string) (Inspection, error) {
	report := Inspection{Username: username}

	rec, err := s.store.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		return report, nil
	case err != nil:
		return report, storeError(err)
	}

	report.Exists = true
	report.Username = rec.Username
	report.HashPrefix = rec.PasswordHash[:min(len(rec.PasswordHash), inspectPrefixLen)]
	if scheme, ok := s.verifier.Detect(rec.PasswordHash); ok {
		report.Scheme = scheme
	}

	match, err := s.verifier.VerifyContext(ctx, pw, rec.PasswordHash)
	if err != nil {
		return report, err
	}
	report.Match = match
	return report, nil
}

// ListUsers returns every user in store order with masked hashes.
func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	recs, err := s.store.All(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	out := make([]UserSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, UserSummary{
			UserID:       rec.ID,
			Username:     rec.Username,
			Email:        rec.Email,
			PasswordHash: MaskHash(rec.PasswordHash),
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out, nil
}

// MaskHash keeps the first five characters of a hash. Hashes of five
// characters or fewer are fully masked.
func MaskHash(hash string) string {
	if len(hash) > 5 {
		return hash[:5] + "..."
	}
	return "***"
}
