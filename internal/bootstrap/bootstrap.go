package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/auth"
	"github.com/wolfeidau/inspect/internal/models"
	"github.com/wolfeidau/inspect/internal/store"
	"github.com/wolfeidau/inspect/internal/validate"
)

// EnsureSystemAdmin creates the system admin if none exists. It is idempotent:
// an existing system admin is left untouched whatever its credentials are.
func EnsureSystemAdmin(ctx context.Context, uow store.UnitOfWork, hasher *auth.Hasher, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	cfg.Email = strings.ToLower(strings.TrimSpace(cfg.Email))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid admin config: %w", err)
	}

	hash, err := hasher.Hash(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	res := &Result{}
	err = uow.Do(ctx, func(s store.Stores) error {
		kind := models.PrincipalKindSystemAdmin
		existing, err := s.Principals.FindOne(ctx, store.PrincipalFilter{Kind: &kind})
		switch {
		case err == nil:
			res.Email = existing.Email
			res.Created = false
			return nil
		case !errors.Is(err, store.ErrPrincipalNotFound):
			return err
		}

		now := time.Now().UTC()
		admin := &models.Principal{
			PrincipalID:  uuid.Must(uuid.NewV7()),
			Kind:         models.PrincipalKindSystemAdmin,
			Email:        cfg.Email,
			Name:         cfg.Name,
			Phone:        cfg.Phone,
			Designation:  DefaultAdminName,
			PasswordHash: hash,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := admin.CheckScope(); err != nil {
			return err
		}
		if err := s.Principals.Create(ctx, admin); err != nil {
			return err
		}

		res.Email = admin.Email
		res.Created = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure system admin: %w", err)
	}

	if res.Created {
		log.Info().Str("email", res.Email).Msg("Created default system admin")
		if cfg.Password == DefaultAdminPassword {
			log.Warn().Str("email", res.Email).Msg("System admin uses the default password, change it immediately")
		}
	} else {
		log.Info().Str("email", res.Email).Msg("System admin already exists")
	}

	return res, nil
}
