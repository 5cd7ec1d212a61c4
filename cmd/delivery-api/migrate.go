package main

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"github.com/vasiliy-maslov/delivery-api/internal/db"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if err := db.MigrateUp(cfg.Postgres); err != nil {
						return err
					}
					log.Info().Str("path", cfg.Postgres.MigrationsPath).Msg("Migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back the latest migration",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					if err := db.MigrateDown(cfg.Postgres); err != nil {
						return err
					}
					log.Info().Msg("Rolled back one migration")
					return nil
				},
			},
		},
	}
}
