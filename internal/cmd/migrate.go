package cmd

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/lukelittle/claroz/internal/cmd/flags"
	"github.com/lukelittle/claroz/internal/config"
	"github.com/lukelittle/claroz/internal/persistence"
	"github.com/lukelittle/claroz/pkg/clicfg"
)

var migrateCmd = &cli.Command{
	Name:  "migrate",
	Usage: "Apply database migrations and exit",
	Flags: []cli.Flag{
		flags.DatabaseURL,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		cfg := config.Config{}
		if err := clicfg.ParseFlags(c, &cfg); err != nil {
			return err
		}

		db := &persistence.DB{Config: &cfg}
		if err := db.Init(ctx); err != nil {
			return err
		}
		defer db.Shutdown(ctx) //nolint:errcheck

		migrator := &persistence.Migrator{Logger: slog.Default(), DB: db}
		if err := migrator.Init(ctx); err != nil {
			return err
		}

		return migrator.Up(ctx)
	},
}
