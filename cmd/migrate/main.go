package main

import (
	"fmt"
	"os"
	"strconv"

	"towerhub-api/config"
	"towerhub-api/logger"
	"towerhub-api/migrations"
)

func main() {
	log := logger.New()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	db, err := config.ConnectDatabase(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	migrator, err := migrations.NewMigrator(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("migrator init failed")
	}
	// Ajouter toutes les migrations
	for _, migration := range migrations.All() {
		migrator.AddMigration(migration)
	}

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch command := os.Args[1]; command {
	case "migrate":
		if _, err := migrator.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	case "rollback":
		steps := 1
		if len(os.Args) > 2 {
			if s, err := strconv.Atoi(os.Args[2]); err == nil {
				steps = s
			}
		}
		if err := migrator.Rollback(steps); err != nil {
			log.Fatal().Err(err).Msg("rollback failed")
		}
	case "status":
		if err := showStatus(migrator); err != nil {
			log.Fatal().Err(err).Msg("status failed")
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migrate migrate          - Run pending migrations")
	fmt.Println("  go run ./cmd/migrate rollback [steps] - Rollback migrations (default: 1)")
	fmt.Println("  go run ./cmd/migrate status           - Show migration status")
}

func showStatus(migrator *migrations.Migrator) error {
	applied, err := migrator.Status()
	if err != nil {
		return err
	}
	pending, err := migrator.Pending()
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Println("No migrations have been run yet.")
	} else {
		fmt.Println("Migration Status:")
		fmt.Println("Batch | Name")
		fmt.Println("------|-----")
		for _, migration := range applied {
			fmt.Printf("%-5d | %s\n", migration.Batch, migration.Name)
		}
	}

	for _, name := range pending {
		fmt.Printf("pend. | %s\n", name)
	}
	return nil
}
