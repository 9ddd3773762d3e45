package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher(0)
	require.NoError(t, err)
	require.Equal(t, DefaultHashCost, h.cost)

	_, err = NewHasher(bcrypt.MaxCost + 1)
	require.Error(t, err)
}

func TestHasher(t *testing.T) {
	h := newTestHasher(t)

	digest, err := h.Hash("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", digest)

	t.Run("matching secret verifies", func(t *testing.T) {
		require.True(t, h.Verify("s3cret!", digest))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		require.False(t, h.Verify("s3cret?", digest))
	})

	t.Run("digests are salted", func(t *testing.T) {
		again, err := h.Hash("s3cret!")
		require.NoError(t, err)
		require.NotEqual(t, digest, again)
		require.True(t, h.Verify("s3cret!", again))
	})

	t.Run("tampered digest fails", func(t *testing.T) {
		tampered := digest[:len(digest)-1] + "x"
		if tampered == digest {
			tampered = digest[:len(digest)-1] + "y"
		}
		require.False(t, h.Verify("s3cret!", tampered))
	})

	t.Run("malformed digest fails", func(t *testing.T) {
		require.False(t, h.Verify("s3cret!", "not-a-digest"))
		require.False(t, h.Verify("s3cret!", ""))
	})
}

func TestCheckSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		err    error
	}{
		{name: "too short", secret: "abc12", err: ErrSecretTooShort},
		{name: "minimum length", secret: "abc123"},
		{name: "multibyte counts characters", secret: "ééééé", err: ErrSecretTooShort},
		{name: "too long", secret: strings.Repeat("a", 73), err: ErrSecretTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSecret(tt.secret)
			if tt.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.err)
			require.True(t, IsSecretError(err))
		})
	}

	_, err := newTestHasher(t).Hash("short")
	require.ErrorIs(t, err, ErrSecretTooShort)
}
