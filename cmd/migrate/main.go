package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/vladislavdragonenkov/titan-coffee/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

func stepsFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "steps",
		Usage: "number of migrations to apply/rollback (0=all for up, 1 for down)",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migrate",
		Usage: "manage the PostgreSQL schema of the coffee shop API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "PostgreSQL DSN",
				EnvVars: []string{"POSTGRES_DSN"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaultTimeout,
				Usage: "overall timeout",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Flags: []cli.Flag{stepsFlag()},
				Action: withDSN(func(ctx context.Context, c *cli.Context, dsn string) error {
					if err := postgres.MigrateUp(ctx, dsn, c.Int("steps")); err != nil {
						return fmt.Errorf("migrate up failed: %w", err)
					}
					return printStatus(ctx, c, dsn, "migrate up ok")
				}),
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{stepsFlag()},
				Action: withDSN(func(ctx context.Context, c *cli.Context, dsn string) error {
					if err := postgres.MigrateDown(ctx, dsn, c.Int("steps")); err != nil {
						return fmt.Errorf("migrate down failed: %w", err)
					}
					return printStatus(ctx, c, dsn, "migrate down ok")
				}),
			},
			{
				Name:  "status",
				Usage: "print the current schema version",
				Action: withDSN(func(ctx context.Context, c *cli.Context, dsn string) error {
					return printStatus(ctx, c, dsn, "migration status")
				}),
			},
		},
	}
}

// withDSN проверяет DSN и ограничивает команду общим таймаутом.
func withDSN(fn func(ctx context.Context, c *cli.Context, dsn string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		dsn := c.String("dsn")
		if dsn == "" {
			return cli.Exit("POSTGRES_DSN (or --dsn) is required", 1)
		}
		ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
		defer cancel()
		return fn(ctx, c, dsn)
	}
}

func printStatus(ctx context.Context, c *cli.Context, dsn, prefix string) error {
	status, err := postgres.Status(ctx, dsn)
	if err != nil {
		return fmt.Errorf("migration status failed: %w", err)
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s: version=%d dirty=%t\n", prefix, status.Version, status.Dirty)
	return err
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.WithError(err).Error("migrate failed")
		os.Exit(1)
	}
}
