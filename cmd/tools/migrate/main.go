package main

import (
	"log"

	"github.com/Mootosamy/backend-chronopost/internal/config"
	"github.com/Mootosamy/backend-chronopost/internal/database"
)

func main() {
	cfg, err := config.LoadDB()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Printf("schema up to date (%s)", cfg.Driver)
}
