package main

import (
	"fmt"
	"os"

	"towerhub-api/config"
	"towerhub-api/fixtures"
	"towerhub-api/logger"
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
	fixtureManager := fixtures.NewFixtures(db, log)

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	switch command := os.Args[1]; command {
	case "seed":
		if err := fixtureManager.Seed(); err != nil {
			log.Fatal().Err(err).Msg("failed to seed catalog")
		}
	case "generate":
		if err := fixtureManager.GenerateTestData(); err != nil {
			log.Fatal().Err(err).Msg("failed to generate fixtures")
		}
	case "clear":
		if err := fixtureManager.ClearAllData(); err != nil {
			log.Fatal().Err(err).Msg("failed to clear fixtures")
		}
	case "regenerate":
		if err := fixtureManager.ClearAllData(); err != nil {
			log.Fatal().Err(err).Msg("failed to clear fixtures")
		}
		if err := fixtureManager.GenerateTestData(); err != nil {
			log.Fatal().Err(err).Msg("failed to generate fixtures")
		}
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures seed        - Insert the badge and achievement catalog")
	fmt.Println("  go run ./cmd/fixtures generate    - Generate demo data (towers, teams, tournaments, matches)")
	fmt.Println("  go run ./cmd/fixtures clear       - Clear all data")
	fmt.Println("  go run ./cmd/fixtures regenerate  - Clear and regenerate all data")
}
