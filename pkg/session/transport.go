package session

import (
	"net/http"
	"strings"
)

// Extractor finds the credential artifact a request presents. It returns
// ErrNoArtifact when there is none.
type Extractor interface {
	Extract(r *http.Request) (string, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(r *http.Request) (string, error)

func (f ExtractorFunc) Extract(r *http.Request) (string, error) { return f(r) }

// Bearer reads "Authorization: Bearer <artifact>". The scheme is matched
// case-insensitively; any other scheme counts as no artifact.
func Bearer() Extractor {
	return ExtractorFunc(func(r *http.Request) (string, error) {
		scheme, value, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return "", ErrNoArtifact
		}
		if value = strings.TrimSpace(value); value == "" {
			return "", ErrNoArtifact
		}
		return value, nil
	})
}

// FirstOf returns the artifact of the first extractor that finds one. Later
// extractors are not consulted, even if the first artifact turns out to be
// invalid.
func FirstOf(extractors ...Extractor) Extractor {
	return ExtractorFunc(func(r *http.Request) (string, error) {
		for _, e := range extractors {
			if v, err := e.Extract(r); err == nil && v != "" {
				return v, nil
			}
		}
		return "", ErrNoArtifact
	})
}
