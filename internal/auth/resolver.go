package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/apperr"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	notAuthorizedMessage = "Not authorized, token failed"

	defaultLastLoginTimeout = 5 * time.Second
)

// Resolver turns a bearer token into an AuthContext backed by current store state.
type Resolver struct {
	tokens        *TokenIssuer
	principals    store.PrincipalStore
	organizations store.OrganizationStore

	lastLoginTimeout time.Duration
	wg               sync.WaitGroup
}

// NewResolver creates a resolver over the given stores.
func NewResolver(tokens *TokenIssuer, stores store.Stores) *Resolver {
	return &Resolver{
		tokens:           tokens,
		principals:       stores.Principals,
		organizations:    stores.Organizations,
		lastLoginTimeout: defaultLastLoginTimeout,
	}
}

// Resolve verifies the token and loads its subject. Missing or inactive subjects
// are Unauthenticated; store failures are Transient and never treated as a decision.
func (r *Resolver) Resolve(ctx context.Context, token string) (AuthContext, error) {
	if token == "" {
		return AuthContext{}, r.reject(ctx, "missing_token")
	}

	claims, err := r.tokens.Verify(token)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Token verification failed")
		return AuthContext{}, r.reject(ctx, "invalid_token")
	}

	subjectID, _ := claims.SubjectID()

	if claims.Kind == SubjectOrganization {
		return r.resolveOrganization(ctx, subjectID)
	}

	return r.resolvePrincipal(ctx, claims.Kind, subjectID)
}

func (r *Resolver) resolvePrincipal(ctx context.Context, kind SubjectKind, principalID uuid.UUID) (AuthContext, error) {
	principal, err := r.principals.Get(ctx, principalID)
	if err != nil {
		if errors.Is(err, store.ErrPrincipalNotFound) {
			return AuthContext{}, r.reject(ctx, "unknown_principal")
		}
		return AuthContext{}, apperr.Transient(err)
	}

	if !principal.Active {
		return AuthContext{}, r.reject(ctx, "inactive_principal")
	}

	// The stored kind wins over the claim so a changed role takes effect immediately.
	if SubjectKindOf(principal.Kind) != kind {
		return AuthContext{}, r.reject(ctx, "kind_mismatch")
	}

	r.touchLastLogin(ctx, principal.PrincipalID)

	return AuthContext{
		Kind:      kind,
		SubjectID: principal.PrincipalID,
		OrgID:     principal.OrgID,
		Principal: principal,
	}, nil
}

func (r *Resolver) resolveOrganization(ctx context.Context, orgID uuid.UUID) (AuthContext, error) {
	org, err := r.organizations.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return AuthContext{}, r.reject(ctx, "unknown_organization")
		}
		return AuthContext{}, apperr.Transient(err)
	}

	if !org.Active {
		return AuthContext{}, r.reject(ctx, "inactive_organization")
	}

	id := org.OrgID
	return AuthContext{
		Kind:         SubjectOrganization,
		SubjectID:    org.OrgID,
		OrgID:        &id,
		Organization: org,
	}, nil
}

func (r *Resolver) reject(ctx context.Context, reason string) error {
	telemetry.GetMetrics().TokenRejectionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
	return apperr.Unauthenticated(notAuthorizedMessage)
}

// touchLastLogin records the access time in the background. Failures are logged
// and counted, never returned, and a concurrent update may win.
func (r *Resolver) touchLastLogin(ctx context.Context, principalID uuid.UUID) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.lastLoginTimeout)
		defer cancel()

		now := time.Now().UTC()
		if _, err := r.principals.Update(ctx, principalID, store.PrincipalPatch{LastLoginAt: &now}); err != nil {
			telemetry.GetMetrics().LastLoginErrorsTotal.Add(ctx, 1)
			log.Warn().Err(err).Str("principal_id", principalID.String()).Msg("Failed to update last login")
		}
	}()
}

// Wait blocks until in-flight last login updates finish.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// IssueFor issues a token for a principal.
func (r *Resolver) IssueFor(p *models.Principal) (string, error) {
	return r.tokens.Issue(NewClaims(SubjectKindOf(p.Kind), p.PrincipalID, p.OrgID))
}

// IssueForOrganization issues an organization token.
func (r *Resolver) IssueForOrganization(org *models.Organization) (string, error) {
	id := org.OrgID
	return r.tokens.Issue(NewClaims(SubjectOrganization, org.OrgID, &id))
}
