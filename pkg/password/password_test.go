package password_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authcore/pkg/async"
	"github.com/dmitrymomot/authcore/pkg/password"
)

func legacyHash(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

func newVerifier(opts ...password.Option) *password.Verifier {
	return password.New(append([]password.Option{password.WithBcryptCost(bcrypt.MinCost)}, opts...)...)
}

func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	for _, pw := range []string{"", "secret", "пароль-密码-🔑", `!@#$%^&*()_+{}|:"<>?,./;'[]\`, strings.Repeat("a", 72)} {
		t.Run(pw, func(t *testing.T) {
			t.Parallel()
			hash, err := v.Hash(pw)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$2"), "new hashes use bcrypt")
			assert.True(t, v.Verify(pw, hash))
			assert.False(t, v.Verify(pw+"x", hash))
		})
	}
}

func TestVerifier_TooLong(t *testing.T) {
	t.Parallel()

	_, err := newVerifier().Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, password.ErrPasswordTooLong)
}

func TestVerifier_LegacyFallback(t *testing.T) {
	t.Parallel()

	v := newVerifier()

	t.Run("legacy hash verifies", func(t *testing.T) {
		assert.True(t, v.Verify("hunter2", legacyHash("hunter2")))
		assert.True(t, v.Verify("hunter2", strings.ToUpper(legacyHash("hunter2"))))
		assert.False(t, v.Verify("hunter3", legacyHash("hunter2")))
	})

	t.Run("legacy-only chain rejects bcrypt hashes", func(t *testing.T) {
		strong, err := v.Hash("hunter2")
		require.NoError(t, err)

		legacyOnly := password.New(password.WithChain(password.SHA256()))
		assert.False(t, legacyOnly.Verify("hunter2", strong))
	})

	t.Run("plaintext stored value never matches", func(t *testing.T) {
		assert.False(t, v.Verify("hunter2", "hunter2"))
		// a 64-char hex password stored verbatim is recognized as sha256 but
		// its digest differs from itself
		hexPw := legacyHash("seed")
		assert.False(t, v.Verify(hexPw, hexPw))
	})

	t.Run("empty hash never matches", func(t *testing.T) {
		assert.False(t, v.Verify("", ""))
	})
}

func TestVerifier_ChainOrder(t *testing.T) {
	t.Parallel()

	rec := &recordingHasher{scheme: "first"}
	rec2 := &recordingHasher{scheme: "second"}
	v := password.New(password.WithChain(rec, rec2))

	assert.Equal(t, password.Scheme("first"), v.Primary())
	assert.False(t, v.Verify("pw", "stored"))
	assert.Equal(t, []password.Scheme{"first", "second"}, append(rec.calls, rec2.calls...))

	assert.Panics(t, func() { password.New(password.WithChain()) })
}

func TestVerifier_Detect(t *testing.T) {
	t.Parallel()

	v := newVerifier()
	strong, err := v.Hash("pw")
	require.NoError(t, err)

	s, ok := v.Detect(strong)
	assert.True(t, ok)
	assert.Equal(t, password.SchemeBcrypt, s)

	s, ok = v.Detect(legacyHash("pw"))
	assert.True(t, ok)
	assert.Equal(t, password.SchemeSHA256, s)

	_, ok = v.Detect("plain")
	assert.False(t, ok)
}

func TestVerifier_Pool(t *testing.T) {
	t.Parallel()

	v := newVerifier(password.WithPool(async.NewPool(2)))
	ctx := context.Background()

	hash, err := v.HashContext(ctx, "pooled")
	require.NoError(t, err)

	ok, err := v.VerifyContext(ctx, "pooled", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.VerifyContext(ctx, "wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	cancelled, cancel := context.WithTimeout(ctx, time.Nanosecond)
	defer cancel()
	<-cancelled.Done()
	_, err = v.HashContext(cancelled, "late")
	assert.Error(t, err)
}

type recordingHasher struct {
	scheme password.Scheme
	calls  []password.Scheme
}

func (h *recordingHasher) Scheme() password.Scheme        { return h.scheme }
func (h *recordingHasher) Hash(pw string) (string, error) { return pw, nil }
func (h *recordingHasher) Verify(string, string) bool     { return false }

func (h *recordingHasher) Recognizes(string) bool {
	h.calls = append(h.calls, h.scheme)
	return true
}
