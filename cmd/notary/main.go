package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/identity-oracle/pkg/app"
	notaryapp "github.com/chainsafe/identity-oracle/pkg/app/notary"
	"github.com/chainsafe/identity-oracle/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.notary.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadNotary(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = notaryapp.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Notary stopped: %v\n", err)
		os.Exit(1)
	}
}
