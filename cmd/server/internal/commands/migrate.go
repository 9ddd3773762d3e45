package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/logger"
	postgresstore "github.com/wolfeidau/inspect/internal/store/postgres"
)

type MigrateCmd struct {
	Postgres PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Dev)

	if err := c.Postgres.validate(); err != nil {
		return err
	}

	db, err := postgresstore.New(ctx, c.Postgres.config(true))
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	db.Close()

	log.Info().Msg("Migrations applied")
	return nil
}
