package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/0xpratik010/tridev/go/internal/throttle"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "admin123"
)

func newVerifier(t *testing.T) *BcryptVerifier {
	t.Helper()
	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	v, err := NewBcryptVerifier(testEmail, hash)
	require.NoError(t, err)
	return v
}

type countingVerifier struct {
	Verifier
	calls int
}

func (c *countingVerifier) Verify(ctx context.Context, identity, secret string) (bool, error) {
	c.calls++
	return c.Verifier.Verify(ctx, identity, secret)
}

func newTestApp(t *testing.T, clock clockwork.Clock) (*App, *countingVerifier) {
	t.Helper()
	verifier := &countingVerifier{Verifier: newVerifier(t)}
	limiter := throttle.New(throttle.NewMemoryStore(), clock, throttle.Config{})
	return NewApp(limiter, verifier, NewSessionStore(clock, time.Hour)), verifier
}

func TestBcryptVerifier(t *testing.T) {
	ctx := context.Background()
	v := newVerifier(t)

	ok, err := v.Verify(ctx, testEmail, testPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(ctx, "  Admin@Example.com ", testPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(ctx, testEmail, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify(ctx, "other@example.com", testPassword)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewBcryptVerifier(testEmail, "plaintext")
	assert.Error(t, err)
	_, err = NewBcryptVerifier("", "$2a$10$abc")
	assert.Error(t, err)
}

func TestLoginThrottledAfterFiveFailures(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	app, verifier := newTestApp(t, clock)

	for i := 0; i < 5; i++ {
		_, err := app.Login(ctx, "10.0.0.1", testEmail, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredential)
		clock.Advance(time.Minute)
	}

	_, err := app.Login(ctx, "10.0.0.1", testEmail, testPassword)
	assert.ErrorIs(t, err, ErrThrottleExceeded)
	var throttled *ThrottledError
	require.True(t, errors.As(err, &throttled))
	assert.Equal(t, 5*time.Minute, throttled.RetryAfter)
	assert.Equal(t, 5, verifier.calls)

	// another client is unaffected
	session, err := app.Login(ctx, "10.0.0.2", testEmail, testPassword)
	require.NoError(t, err)
	assert.Equal(t, testEmail, session.Identity)
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	app, _ := newTestApp(t, clock)

	for i := 0; i < 4; i++ {
		_, err := app.Login(ctx, "k", testEmail, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredential)
	}
	_, err := app.Login(ctx, "k", testEmail, testPassword)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := app.Login(ctx, "k", testEmail, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredential, "attempt %d", i)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	app, _ := newTestApp(t, clock)

	session, err := app.Login(ctx, "k", testEmail, testPassword)
	require.NoError(t, err)

	got, err := app.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)

	clock.Advance(time.Hour)
	_, err = app.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	session, err = app.Login(ctx, "k", testEmail, testPassword)
	require.NoError(t, err)
	app.Logout(ctx, session.Token)
	_, err = app.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	tok, ok = bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer ", "Basic abc", "abc"} {
		_, ok := bearerToken(h)
		assert.False(t, ok, h)
	}
}
