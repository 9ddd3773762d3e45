package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/inspect/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Dev            bool                       `help:"Enable development mode (debug logs, error details in responses)." env:"INSPECT_DEV"`
		Version        kong.VersionFlag
		Server         commands.ServerCmd         `cmd:"" help:"Start the inspection API server"`
		Migrate        commands.MigrateCmd        `cmd:"" help:"Apply pending PostgreSQL migrations"`
		BootstrapAdmin commands.BootstrapAdminCmd `cmd:"" name:"bootstrap-admin" help:"Create the system admin if none exists"`
	}
)

func main() {
	// Values already in the environment win over the .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = os.Stderr.WriteString("failed to load .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Dev: cli.Dev, Version: version})
	cmd.FatalIfErrorf(err)
}
