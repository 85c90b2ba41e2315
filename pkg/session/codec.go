package session

import (
	"fmt"
	"time"
)

// record is the persisted form of a Session, shared by the file and Redis
// stores. Times are RFC 3339 strings; zone-less timestamps are read as UTC.
// The TTL is written in nanoseconds; ttl_seconds is still read from older
// records.
type record struct {
	Subject    string `json:"subject"`
	ExpiresAt  string `json:"expires_at"`
	CreatedAt  string `json:"created_at,omitempty"`
	TTLNanos   int64  `json:"ttl_ns,omitempty"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func encodeRecord(s *Session) record {
	r := record{
		Subject:   s.Subject,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339Nano),
		TTLNanos:  int64(s.TTL),
	}
	if !s.CreatedAt.IsZero() {
		r.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

func decodeRecord(id string, r record) (*Session, error) {
	if id == "" || r.Subject == "" {
		return nil, ErrInvalidSession
	}
	expiresAt, err := parseTime(r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:        id,
		Subject:   r.Subject,
		ExpiresAt: expiresAt,
		TTL:       time.Duration(r.TTLNanos),
	}
	if r.TTLNanos == 0 && r.TTLSeconds > 0 {
		s.TTL = time.Duration(r.TTLSeconds) * time.Second
	}
	if r.CreatedAt != "" {
		if s.CreatedAt, err = parseTime(r.CreatedAt); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("session: unparseable time %q", v)
}
