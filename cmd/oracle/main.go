package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/identity-oracle/pkg/app"
	oracleapp "github.com/chainsafe/identity-oracle/pkg/app/oracle"
	"github.com/chainsafe/identity-oracle/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.oracle.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadOracle(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = oracleapp.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Oracle stopped: %v\n", err)
		os.Exit(1)
	}
}
