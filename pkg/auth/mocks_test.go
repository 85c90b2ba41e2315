package auth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/authcore/pkg/session"
	"github.com/dmitrymomot/authcore/pkg/userstore"
)

// MockStore is a mock implementation of userstore.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, username, email, passwordHash string) (userstore.Record, error) {
	args := m.Called(ctx, username, email, passwordHash)
	return args.Get(0).(userstore.Record), args.Error(1)
}

func (m *MockStore) FindByUsername(ctx context.Context, username string) (userstore.Record, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(userstore.Record), args.Error(1)
}

func (m *MockStore) FindByID(ctx context.Context, id string) (userstore.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(userstore.Record), args.Error(1)
}

func (m *MockStore) All(ctx context.Context) ([]userstore.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]userstore.Record), args.Error(1)
}

// countingSessionStore records how often the backing session store is read.
type countingSessionStore struct {
	session.Store
	gets atomic.Int32
}

func (s *countingSessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.gets.Add(1)
	return s.Store.Get(ctx, id)
}

// testClock is a settable clock shared by the session manager and the token
// service under test.
type testClock struct {
	now atomic.Int64
}

func newTestClock() *testClock {
	c := &testClock{}
	c.now.Store(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *testClock) Now() time.Time { return time.Unix(0, c.now.Load()).UTC() }

func (c *testClock) Advance(d time.Duration) { c.now.Add(int64(d)) }
