package account

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrymomot/authcore/handler"
	"github.com/dmitrymomot/authcore/pkg/auth"
	"github.com/dmitrymomot/authcore/pkg/logger"
)

// User is the public view of an account.
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func userFromIdentity(id auth.Identity) User {
	return User{UserID: id.UserID, Username: id.Username, Email: id.Email}
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (m *Module) register(ctx handler.Context, req RegisterRequest) handler.Response {
	id, err := m.auth.CreateUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(userFromIdentity(id))
}

// LoginRequest is the body of POST /login. TTLSeconds, when present,
// overrides the default credential lifetime.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	TTLSeconds *int   `json:"ttl_seconds,omitempty"`
}

// maxTTLSeconds is the largest ttl_seconds that fits a time.Duration.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// ttl returns the requested lifetime, if any.
func (r LoginRequest) ttl() (time.Duration, bool, error) {
	if r.TTLSeconds == nil {
		return 0, false, nil
	}
	secs := int64(*r.TTLSeconds)
	if secs > maxTTLSeconds || secs < -maxTTLSeconds {
		return 0, false, errors.Join(auth.ErrInvalidInput, fmt.Errorf("ttl_seconds %d out of range", secs))
	}
	return time.Duration(secs) * time.Second, true, nil
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (m *Module) login(ctx handler.Context, req LoginRequest) handler.Response {
	ttl, hasTTL, err := req.ttl()
	if err != nil {
		return m.fail(ctx, err)
	}
	id, err := m.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return m.fail(ctx, err)
	}

	var opts []auth.IssueOption
	if hasTTL {
		opts = append(opts, auth.WithTTL(ttl))
	}
	cred, err := m.auth.IssueCredential(ctx, id, opts...)
	if err != nil {
		return m.fail(ctx, err)
	}

	m.cookie.Set(ctx.ResponseWriter(), cred.Artifact, cred.TTL(m.now()))
	m.logger.InfoContext(ctx, "user logged in",
		logger.UserID(id.UserID),
		logger.Strategy(string(cred.Strategy)),
	)
	return handler.JSON(LoginResponse{
		Success:   true,
		User:      userFromIdentity(id),
		Token:     cred.Artifact,
		ExpiresAt: cred.ExpiresAt,
	})
}

type successResponse struct {
	Success bool `json:"success"`
}

// logout revokes whatever artifact the request presents and clears the
// cookie. A request without a usable artifact still succeeds.
func (m *Module) logout(ctx handler.Context, _ struct{}) handler.Response {
	if artifact, ok := m.auth.Resolver().Artifact(ctx.Request()); ok {
		err := m.auth.Revoke(ctx, artifact)
		switch {
		case errors.Is(err, auth.ErrInvalid):
			m.logger.DebugContext(ctx, "logout with malformed credential", logger.Error(err))
		case err != nil:
			return m.fail(ctx, err)
		}
	}
	m.cookie.Clear(ctx.ResponseWriter())
	return handler.JSON(successResponse{Success: true})
}

func (m *Module) me(ctx handler.Context, _ struct{}) handler.Response {
	id := auth.IdentityFromContext(ctx)
	if id.IsAnonymous() {
		return handler.JSON(nil)
	}
	return handler.JSON(userFromIdentity(id))
}

type checkResponse struct {
	Authenticated bool `json:"authenticated"`
}

func (m *Module) check(ctx handler.Context, _ struct{}) handler.Response {
	return handler.JSON(checkResponse{Authenticated: !auth.IdentityFromContext(ctx).IsAnonymous()})
}

type usersResponse struct {
	Users []auth.UserSummary `json:"users"`
	Count int                `json:"count"`
}

func (m *Module) users(ctx handler.Context, _ struct{}) handler.Response {
	list, err := m.auth.ListUsers(ctx)
	if err != nil {
		return m.fail(ctx, err)
	}
	return handler.JSON(usersResponse{Users: list, Count: len(list)})
}

// fail logs server-side failures and renders the mapped error.
func (m *Module) fail(ctx handler.Context, err error) handler.Response {
	err = httpError(err)
	var httpErr handler.HTTPError
	if !errors.As(err, &httpErr) {
		m.logger.ErrorContext(ctx, "request failed",
			logger.Path(ctx.Request().URL.Path),
			logger.Error(err),
		)
	}
	return handler.JSONError(err)
}
