package session

import (
	"net/http"
	"time"
)

// DefaultCookieName is the cookie carrying the credential artifact.
const DefaultCookieName = "session_id"

// Cookie reads and writes the artifact in an HttpOnly, SameSite=Lax cookie
// scoped to "/". The value is either a random session id or a signed token
// and is stored as is.
type Cookie struct {
	name   string
	secure bool
}

// NewCookie returns a Cookie named name, or DefaultCookieName when empty.
func NewCookie(name string, secure bool) *Cookie {
	if name == "" {
		name = DefaultCookieName
	}
	return &Cookie{name: name, secure: secure}
}

// Name returns the cookie name.
func (c *Cookie) Name() string { return c.name }

func (c *Cookie) Extract(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.name)
	if err != nil || ck.Value == "" {
		return "", ErrNoArtifact
	}
	return ck.Value, nil
}

// Set writes artifact with Max-Age equal to ttl in whole seconds. A ttl
// under one second expires the cookie immediately.
func (c *Cookie) Set(w http.ResponseWriter, artifact string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, c.cookie(artifact, maxAge))
}

// Clear tells the client to drop the cookie.
func (c *Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Cookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
