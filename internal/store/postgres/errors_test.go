package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/inspect/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "duplicate email",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "principals_email_key"},
			expected: store.ErrPrincipalAlreadyExists,
		},
		{
			name:     "duplicate organization name",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "organizations_name_key"},
			expected: store.ErrOrganizationAlreadyExists,
		},
		{
			name:     "missing organization",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "principals_org_id_fkey"},
			expected: store.ErrOrganizationNotFound,
		},
		{
			name:     "connection failure",
			err:      &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			expected: store.ErrUnavailable,
		},
		{
			name:     "query canceled",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.QueryCanceled}),
			expected: store.ErrUnavailable,
		},
		{
			name:     "deadline",
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			expected: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapPostgresError(tt.err), tt.expected)
		})
	}

	require.NoError(t, mapPostgresError(nil))

	plain := errors.New("boom")
	require.Equal(t, plain, mapPostgresError(plain))
}

func TestIsRetryable(t *testing.T) {
	require.True(t, isRetryable(fmt.Errorf("commit: %w", &pgconn.PgError{Code: pgerrcode.SerializationFailure})))
	require.True(t, isRetryable(&pgconn.PgError{Code: pgerrcode.DeadlockDetected}))
	require.False(t, isRetryable(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	require.False(t, isRetryable(errors.New("boom")))
}
