// migrate applies or rolls back the helpdesk schema using the migrations
// embedded in the postgres adapter.
//
//	migrate [--database-url URL] up
//	migrate [--database-url URL] down [--steps N]
//	migrate [--database-url URL] version
//	migrate [--database-url URL] force VERSION
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/lorrc/helpdesk-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/helpdesk-backend/internal/infrastructure/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()

	var (
		databaseURL string
		steps       int
	)

	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection URL (default: $DATABASE_URL)")
	flagSet.IntVarP(&steps, "steps", "n", 0, "number of migrations to roll back with down (0 rolls back all)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(flagSet)
		return errors.New("missing command")
	}
	if databaseURL == "" {
		return errors.New("--database-url or DATABASE_URL is required")
	}

	logger := logging.NewLogger(logging.Config{
		Level:       "info",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "helpdesk-migrate",
		Environment: os.Getenv("APP_ENV"),
	})

	mg, err := postgres.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = mg.Close() }()

	switch rest[0] {
	case "up":
		if err := mg.Up(); err != nil {
			return err
		}
	case "down":
		if err := mg.Down(steps); err != nil {
			return err
		}
	case "version":
	case "force":
		if len(rest) < 2 {
			return errors.New("force needs a version")
		}
		v, err := strconv.Atoi(rest[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", rest[1], err)
		}
		if err := mg.Force(v); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command %q", rest[0])
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	logger.Info("schema version", "command", rest[0], "version", version, "dirty", dirty)
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: migrate [flags] <up|down|version|force VERSION>\n\nFlags:\n")
	flagSet.PrintDefaults()
}
