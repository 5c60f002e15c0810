// Package requester implements app.Runner for a one-shot token request: it asks the
// configured oracle to attest an identity document and records the issuance with the notary.
package requester

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/flow"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/notary"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
	"github.com/chainsafe/identity-oracle/pkg/oracle/rpc"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

// Request names the document to attest and the party sharing the resulting state.
// An empty Counterparty makes the requester the sole participant.
type Request struct {
	Document     attestation.IdentityDocument
	Counterparty string
}

// Result is written to the runner's output once the transaction is final
type Result struct {
	TransactionID string                   `json:"transaction_id"`
	Fact          attestation.AttestedFact `json:"fact"`
	Signers       []keys.PublicKey         `json:"signers"`
}

// Runner runs one token request
type Runner struct {
	cfg *config.RequesterConfig
	req Request
	out io.Writer
}

// NewRunner creates a runner writing its Result as JSON to out
func NewRunner(cfg *config.RequesterConfig, req Request, out io.Writer) *Runner {
	return &Runner{cfg: cfg, req: req, out: out}
}

// Run executes the request. It returns once the notary has finalised the transaction,
// any step fails, or the process is interrupted.
func (r *Runner) Run() error {
	if r.cfg == nil {
		return fmt.Errorf("requester config is nil")
	}
	cfg := r.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Name, cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := r.req.Document.Validate(); err != nil {
		return fmt.Errorf("invalid identity document: %w", err)
	}

	key, err := cfg.Key.KeyPair(cfg.Name)
	if err != nil {
		return fmt.Errorf("load requester key: %w", err)
	}
	dir, err := cfg.Network.Directory()
	if err != nil {
		return fmt.Errorf("load network map: %w", err)
	}
	notaryName, err := cfg.Network.Notary()
	if err != nil {
		return err
	}

	oracleClient, closeOracle, err := r.dialOracle()
	if err != nil {
		return err
	}
	defer closeOracle()

	draft, err := r.draft(ctx, dir, key)
	if err != nil {
		return err
	}

	f := &flow.RequestToken{
		Key:        key,
		Parties:    dir,
		OracleName: cfg.Oracle.Name,
		NotaryName: notaryName,
		Oracle:     oracleClient,
		Notary:     notary.NewClient(cfg.Notary.URL, cfg.Notary.Timeout),
		Observer:   flow.NewLogObserver(logger),
	}

	logger.Info("Requesting attestation",
		zap.String("oracle", cfg.Oracle.Name),
		zap.String("notary", notaryName),
		zap.String("kind", string(draft.Identity.Kind)),
		zap.String("unique_id", draft.UniqueID.String()),
	)
	stx, err := f.Run(ctx, draft)
	if err != nil {
		logger.Error("Token request failed", zap.Error(err))
		return err
	}
	logger.Info("Attestation finalised", zap.String("tx_id", stx.ID().Hex()))

	return r.writeResult(stx)
}

// draft builds the unsigned fact: the requester always issues, the counterparty (or the
// requester again) shares the state.
func (r *Runner) draft(ctx context.Context, dir party.Resolver, key *keys.KeyPair) (attestation.AttestedFact, error) {
	self := party.New(r.cfg.Name, key.PublicKey)
	counterparty := self
	if r.req.Counterparty != "" {
		p, err := dir.Resolve(ctx, r.req.Counterparty)
		if err != nil {
			return attestation.AttestedFact{}, fmt.Errorf("failed to resolve counterparty %q: %w", r.req.Counterparty, err)
		}
		counterparty = p
	}
	return attestation.NewAttestedFact(r.req.Document, "", self, counterparty), nil
}

func (r *Runner) dialOracle() (flow.Oracle, func(), error) {
	oc := r.cfg.Oracle
	if oc.Transport != "grpc" {
		return oracle.NewClient(oc.URL, oracle.WithTimeout(oc.Timeout)), func() {}, nil
	}

	conn, err := rpc.Dial(oc.GRPC)
	if err != nil {
		return nil, nil, err
	}
	return rpc.NewClient(conn), func() { _ = conn.Close() }, nil
}

func (r *Runner) writeResult(stx *ledger.SignedTransaction) error {
	res := Result{TransactionID: stx.ID().Hex()}
	for _, out := range stx.Tx.Outputs {
		if out.Kind == ledger.StateAttestedFact && out.Fact != nil {
			res.Fact = *out.Fact
		}
	}
	for _, sig := range stx.Signatures {
		res.Signers = append(res.Signers, sig.SignerKey)
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&res); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
