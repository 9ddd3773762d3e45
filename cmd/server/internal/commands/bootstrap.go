package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/inspect/internal/bootstrap"
	"github.com/wolfeidau/inspect/internal/logger"
)

type BootstrapAdminCmd struct {
	Store  StoreFlags  `embed:""`
	Admin  AdminFlags  `embed:"" prefix:"admin-"`
	Bcrypt BcryptFlags `embed:""`
}

func (c *BootstrapAdminCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Dev)

	hasher, err := c.Bcrypt.hasher()
	if err != nil {
		return err
	}

	db, err := c.Store.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := bootstrap.EnsureSystemAdmin(ctx, db, hasher, c.Admin.config())
	if err != nil {
		return err
	}

	log.Info().Str("email", res.Email).Bool("created", res.Created).Msg("System admin ready")
	return nil
}
