package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/0xpratik010/tridev/go/internal/throttle"
)

// Limiter is the attempt throttle in front of the verifier.
type Limiter interface {
	Attempt(ctx context.Context, key string) (throttle.Decision, error)
	Reset(ctx context.Context, key string) error
}

// App handles operator login and logout
type App struct {
	limiter  Limiter
	verifier Verifier
	sessions *SessionStore
}

func NewApp(limiter Limiter, verifier Verifier, sessions *SessionStore) *App {
	return &App{
		limiter:  limiter,
		verifier: verifier,
		sessions: sessions,
	}
}

// Login runs one throttled authentication attempt for clientKey. A blocked
// attempt never reaches the verifier.
func (a *App) Login(ctx context.Context, clientKey, identity, secret string) (*Session, error) {
	decision, err := a.limiter.Attempt(ctx, clientKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check login throttle: %w", err)
	}
	if !decision.Allowed {
		return nil, &ThrottledError{RetryAfter: decision.RetryAfter}
	}

	ok, err := a.verifier.Verify(ctx, identity, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}
	if !ok {
		log.Warn().
			Str("key", clientKey).
			Int("remaining", decision.Remaining).
			Msg("operator login failed")
		return nil, ErrInvalidCredential
	}

	if err := a.limiter.Reset(ctx, clientKey); err != nil {
		log.Error().Err(err).Str("key", clientKey).Msg("failed to reset login throttle")
	}

	session := a.sessions.Issue(identity)
	log.Info().Str("key", clientKey).Msg("operator logged in")
	return &session, nil
}

// Logout revokes token.
func (a *App) Logout(_ context.Context, token string) {
	a.sessions.Revoke(token)
}

// Authenticate resolves a bearer token to its session.
func (a *App) Authenticate(_ context.Context, token string) (Session, error) {
	return a.sessions.Validate(token)
}
