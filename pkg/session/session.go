package session

import "time"

// Session is a server-side login record. ID is the opaque bearer value handed
// to the client. TTL is the sliding window applied on every resolve; zero
// means the Manager default.
type Session struct {
	ID        string
	Subject   string
	CreatedAt time.Time
	ExpiresAt time.Time
	TTL       time.Duration
}

// IsExpired reports whether the session has reached its expiry at now.
// A session is live strictly before ExpiresAt.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	c := *s
	return &c
}
