package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wolfeidau/inspect/internal/models"
)

const (
	// Issuer is the iss claim on every token this service signs.
	Issuer = "inspect"

	// DefaultTokenTTL is how long tokens stay valid when no TTL is configured.
	DefaultTokenTTL = 24 * time.Hour

	minSigningSecretLength = 32
)

// ErrInvalidToken covers every verification failure: expiry, bad signature,
// wrong algorithm or issuer and malformed structure.
var ErrInvalidToken = errors.New("invalid token")

// SubjectKind identifies what a token's subject is.
type SubjectKind string

const (
	SubjectSystemAdmin  SubjectKind = "SystemAdmin"
	SubjectOrgAdmin     SubjectKind = "OrgAdmin"
	SubjectUser         SubjectKind = "User"
	SubjectOrganization SubjectKind = "Organization"
)

// SubjectKindOf maps a principal kind to the token subject kind.
func SubjectKindOf(k models.PrincipalKind) SubjectKind {
	switch k {
	case models.PrincipalKindSystemAdmin:
		return SubjectSystemAdmin
	case models.PrincipalKindOrgAdmin:
		return SubjectOrgAdmin
	case models.PrincipalKindUser:
		return SubjectUser
	}
	return ""
}

func (k SubjectKind) valid() bool {
	switch k {
	case SubjectSystemAdmin, SubjectOrgAdmin, SubjectUser, SubjectOrganization:
		return true
	}
	return false
}

// Claims is the payload of a bearer token.
type Claims struct {
	Kind SubjectKind `json:"kind"`
	Org  string      `json:"org,omitempty"`
	jwt.RegisteredClaims
}

// NewClaims builds claims for a subject. org is nil for the system admin.
func NewClaims(kind SubjectKind, subject uuid.UUID, org *uuid.UUID) Claims {
	c := Claims{
		Kind:             kind,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject.String()},
	}
	if org != nil {
		c.Org = org.String()
	}
	return c
}

// SubjectID parses the sub claim.
func (c *Claims) SubjectID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// OrgID parses the org claim, returning nil when it is absent.
func (c *Claims) OrgID() (*uuid.UUID, error) {
	if c.Org == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.Org)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must be at least 32 bytes; a zero ttl selects DefaultTokenTTL.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < minSigningSecretLength {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes", minSigningSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs the claims, stamping issuer, issued-at and expiry.
func (i *TokenIssuer) Issue(c Claims) (string, error) {
	if !c.Kind.valid() {
		return "", fmt.Errorf("unknown subject kind %q", c.Kind)
	}

	now := i.now()
	c.Issuer = Issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the claims.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !claims.Kind.valid() {
		return nil, fmt.Errorf("%w: unknown subject kind", ErrInvalidToken)
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}
	if _, err := claims.OrgID(); err != nil {
		return nil, fmt.Errorf("%w: malformed org", ErrInvalidToken)
	}

	return claims, nil
}
