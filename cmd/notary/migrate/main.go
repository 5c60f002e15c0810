package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/migrations/vaultdb"
	"github.com/chainsafe/identity-oracle/pkg/pgutil"
	mghelper "github.com/chainsafe/identity-oracle/pkg/pgutil/migrations"
)

const usageText = `Usage:
  go run cmd/notary/migrate/main.go [-config file] <command>

Runs command on the notary vault database. Supported commands are:
  - init - creates the migration tables
  - up - applies all pending migrations
  - status - prints applied and pending migrations

`

func main() {
	cfgPath := flag.String("config", "config.notary.yaml", "Path to configuration file")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, err := mghelper.ParseCommand(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.LoadNotary(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}
	if cfg.Database == nil {
		log.Fatalf("no database configured in %s", *cfgPath)
	}

	db, err := pgutil.ConnectDB(cfg.Database)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running %s on notary vault database (%s)...\n", cmd, cfg.Database.Database)

	migrator := migrate.NewMigrator(db, vaultdb.Migrations)
	if err := mghelper.Run(context.Background(), migrator, cmd); err != nil {
		log.Printf("migrate %s failed: %v", cmd, err)
		db.Close()
		os.Exit(1)
	}
}
