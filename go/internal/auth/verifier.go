package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks an identity and secret pair.
type Verifier interface {
	Verify(ctx context.Context, identity, secret string) (bool, error)
}

// BcryptVerifier accepts a single operator identity whose password is stored
// as a bcrypt hash.
type BcryptVerifier struct {
	identity string
	hash     []byte
}

// NewBcryptVerifier validates hash up front so a bad deployment fails at startup.
func NewBcryptVerifier(identity, hash string) (*BcryptVerifier, error) {
	if identity == "" {
		return nil, errors.New("operator identity is required")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &BcryptVerifier{
		identity: normalizeIdentity(identity),
		hash:     []byte(hash),
	}, nil
}

func (v *BcryptVerifier) Verify(_ context.Context, identity, secret string) (bool, error) {
	idOK := subtle.ConstantTimeCompare([]byte(normalizeIdentity(identity)), []byte(v.identity)) == 1

	// the hash is compared even when the identity is wrong
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(secret))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to compare password: %w", err)
	}
	return idOK, nil
}

// HashPassword returns the bcrypt hash of password at cost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeIdentity(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
