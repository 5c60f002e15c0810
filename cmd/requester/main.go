package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chainsafe/identity-oracle/pkg/app"
	requesterapp "github.com/chainsafe/identity-oracle/pkg/app/requester"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.requester.yaml", "Path to configuration file")
	docID := flag.String("id", "", "Identity document id")
	docKind := flag.String("kind", string(attestation.Passport), "Identity document kind")
	counterparty := flag.String("counterparty", "", "Legal name of the party sharing the attested state (default: self)")
	flag.Parse()

	cfg, err := config.LoadRequester(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	req := requesterapp.Request{
		Document: attestation.IdentityDocument{
			ID:   *docID,
			Kind: attestation.IdentityKind(strings.ToUpper(*docKind)),
		},
		Counterparty: *counterparty,
	}

	var runner app.Runner = requesterapp.NewRunner(cfg, req, os.Stdout)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Token request failed: %v\n", err)
		os.Exit(1)
	}
}
