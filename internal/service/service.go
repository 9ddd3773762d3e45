// Package service implements the user, organization and inspection operations.
// Every method takes the caller's auth.AuthContext and consults auth.Authorize
// before reading or writing.
package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const invalidCredentials = "Invalid credentials"

// TokenIssuer mints bearer tokens for authenticated subjects.
type TokenIssuer interface {
	IssueFor(p *models.Principal) (string, error)
	IssueForOrganization(org *models.Organization) (string, error)
}

// authorize consults the engine and records denials.
func authorize(ctx context.Context, ac auth.AuthContext, action auth.Action, res auth.Resource) error {
	d := auth.Authorize(ac, action, res)
	if d.Allowed {
		return nil
	}

	err := d.Err()
	telemetry.GetMetrics().AuthorizationDenials.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", string(action)),
		attribute.String("reason", apperr.KindOf(err).String()),
	))

	log.Debug().
		Str("action", string(action)).
		Str("subject_id", ac.SubjectID.String()).
		Str("reason", apperr.KindOf(err).String()).
		Msg("Authorization denied")

	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// timingDigest returns a digest to compare against when the identity is unknown,
// so unknown and known identities take the same time to reject.
type timingDigest struct {
	once   sync.Once
	digest string
}

func (t *timingDigest) burn(hasher *auth.Hasher, secret string) {
	t.once.Do(func() {
		t.digest, _ = hasher.Hash("timing-equalizer")
	})
	hasher.Verify(secret, t.digest)
}

func loginFailed(ctx context.Context, subject, reason string) error {
	telemetry.GetMetrics().LoginFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("subject", subject),
		attribute.String("reason", reason),
	))
	zerolog.Ctx(ctx).Warn().Str("subject", subject).Str("reason", reason).Msg("Login rejected")
	return apperr.Unauthenticated(invalidCredentials)
}

func loginSucceeded(ctx context.Context, subject string) {
	telemetry.GetMetrics().LoginsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("subject", subject)))
}
