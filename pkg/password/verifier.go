package password

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/authcore/pkg/async"
	"github.com/dmitrymomot/authcore/pkg/logger"
)

// Verifier hashes new passwords with the first scheme of its chain and
// verifies candidates by walking the chain in order.
type Verifier struct {
	chain  []Hasher
	pool   *async.Pool
	logger *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithChain replaces the ordered verification chain. The first hasher is
// used for new hashes.
func WithChain(hashers ...Hasher) Option {
	return func(v *Verifier) {
		v.chain = hashers
	}
}

// WithBcryptCost sets the cost of the primary entry when it is bcrypt.
func WithBcryptCost(cost int) Option {
	return func(v *Verifier) {
		if len(v.chain) > 0 && v.chain[0].Scheme() == SchemeBcrypt {
			v.chain[0] = Bcrypt(cost)
		}
	}
}

// WithPool runs HashContext and VerifyContext on a bounded worker pool.
func WithPool(p *async.Pool) Option {
	return func(v *Verifier) {
		v.pool = p
	}
}

// WithLogger sets the logger used for scheme diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.logger = l
		}
	}
}

// New returns a Verifier with the chain [bcrypt, sha256].
// It panics if the chain is emptied by options.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		chain:  []Hasher{Bcrypt(0), SHA256()},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if len(v.chain) == 0 {
		panic(ErrEmptyChain)
	}
	return v
}

// Primary returns the scheme new hashes are written with.
func (v *Verifier) Primary() Scheme {
	return v.chain[0].Scheme()
}

// Hash hashes password with the primary scheme.
func (v *Verifier) Hash(password string) (string, error) {
	return v.chain[0].Hash(password)
}

// Verify reports whether password matches hash. Each scheme that recognizes
// the hash is tried in chain order; a stored value that no scheme recognizes
// never matches, including one equal to the plaintext.
func (v *Verifier) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	for _, h := range v.chain {
		if !h.Recognizes(hash) {
			continue
		}
		if h.Verify(password, hash) {
			if h.Scheme() != v.Primary() {
				v.logger.Debug("password verified with legacy scheme",
					logger.Component("password"),
					logger.Scheme(string(h.Scheme())),
				)
			}
			return true
		}
	}
	return false
}

// Detect returns the first scheme in the chain that recognizes hash.
func (v *Verifier) Detect(hash string) (Scheme, bool) {
	for _, h := range v.chain {
		if h.Recognizes(hash) {
			return h.Scheme(), true
		}
	}
	return "", false
}

// HashContext is Hash run on the worker pool.
func (v *Verifier) HashContext(ctx context.Context, password string) (string, error) {
	return async.Do(ctx, v.pool, password, func(_ context.Context, pw string) (string, error) {
		return v.Hash(pw)
	})
}

type candidate struct {
	password string
	hash     string
}

// VerifyContext is Verify run on the worker pool. A context that ends before
// a slot frees up yields false and the context error.
func (v *Verifier) VerifyContext(ctx context.Context, password, hash string) (bool, error) {
	return async.Do(ctx, v.pool, candidate{password, hash}, func(_ context.Context, c candidate) (bool, error) {
		return v.Verify(c.password, c.hash), nil
	})
}
