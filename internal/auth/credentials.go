package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultHashCost is the bcrypt work factor used when none is configured.
	DefaultHashCost = 10

	// MinSecretLength is the shortest accepted password.
	MinSecretLength = 6

	// maxSecretLength is the bcrypt input limit in bytes.
	maxSecretLength = 72
)

var (
	ErrSecretTooShort = fmt.Errorf("password must be at least %d characters", MinSecretLength)
	ErrSecretTooLong  = fmt.Errorf("password must be at most %d bytes", maxSecretLength)
)

// Hasher produces and checks one-way salted digests of secrets.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. A zero cost selects DefaultHashCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultHashCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// CheckSecret enforces the password length rules without hashing.
func CheckSecret(secret string) error {
	if len([]rune(secret)) < MinSecretLength {
		return ErrSecretTooShort
	}
	if len(secret) > maxSecretLength {
		return ErrSecretTooLong
	}
	return nil
}

// Hash returns a salted digest of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	if err := CheckSecret(secret); err != nil {
		return "", err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether secret matches digest. Malformed digests never match.
func (h *Hasher) Verify(secret, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	return err == nil
}

// IsSecretError reports whether err is a password rule violation.
func IsSecretError(err error) bool {
	return errors.Is(err, ErrSecretTooShort) || errors.Is(err, ErrSecretTooLong)
}
