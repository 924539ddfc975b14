// Package auth checks operator credentials behind the login throttle and
// issues bearer session tokens for the operator services.
package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrThrottleExceeded  = errors.New("too many login attempts")
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrInvalidSession    = errors.New("invalid session")
	ErrSessionExpired    = errors.New("session expired")
)

// ThrottledError is returned by Login while the attempt window is full.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrThrottleExceeded, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error {
	return ErrThrottleExceeded
}

// Session is an authenticated operator session.
type Session struct {
	Token     string    `json:"token"`
	Identity  string    `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}
