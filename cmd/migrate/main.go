package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lekhnak/uc-pathways-hub-sub001/internal/config"
	"github.com/lekhnak/uc-pathways-hub-sub001/internal/store/postgres"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.DBDSN == "" {
		fmt.Fprintln(os.Stderr, "APP_DB_DSN is required")
		os.Exit(1)
	}

	if err := postgres.Migrate(cfg.DBDSN, *direction); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
	fmt.Println("migrations", *direction, "complete")
}
