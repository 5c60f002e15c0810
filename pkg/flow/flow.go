// Package flow drives the requester side of an AttestedFact issuance: it queries the
// oracle, assembles and self-signs the transaction, obtains the oracle signature over a
// filtered view and submits the result for finality.
package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/contract"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/notary"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

var (
	// ErrFactMismatch is returned when the oracle answers a query with a different fact
	ErrFactMismatch = errors.New("oracle returned a fact that does not match the draft")
	// ErrWrongSigner is returned when a returned signature is not from the expected party
	ErrWrongSigner = errors.New("signature is not from the expected party")
	// ErrNotIssuer is returned when the draft names an issuer other than the flow's key
	ErrNotIssuer = errors.New("draft issuer is not the requesting key")
)

// Oracle is the remote oracle as seen by the requester
type Oracle interface {
	Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error)
	Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error)
}

// Finalizer submits fully signed transactions for finality
type Finalizer interface {
	Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*notary.Receipt, error)
}

// RequestToken requests an attested identity token from an oracle and records it on the ledger.
// A RequestToken holds no per-run state and may be reused.
type RequestToken struct {
	Key        *keys.KeyPair
	Parties    party.Resolver
	OracleName string
	NotaryName string
	Oracle     Oracle
	Notary     Finalizer
	Observer   Observer

	build func(fact attestation.AttestedFact, oracleKey keys.PublicKey, notaryParty party.Party) *ledger.Builder
}

// BuildIssuance returns the canonical issuance of fact: one AttestedFact output under
// contract.ProgramID and one Issue command signed by the issuer and the oracle.
func BuildIssuance(fact attestation.AttestedFact, oracleKey keys.PublicKey, notaryParty party.Party) *ledger.Builder {
	return ledger.NewBuilder(notaryParty).
		AddOutputState(fact, contract.ProgramID).
		AddCommand(ledger.NewIssueCommand(attestation.IssueCommand{Fact: fact}, fact.Issuer.Key, oracleKey))
}

func (r *RequestToken) step(s Step) {
	if r.Observer != nil {
		r.Observer.OnStep(s)
	}
}

// Run executes the flow for draft. Each step runs only if the previous one succeeded;
// nothing reaches the notary unless every earlier check passed. The returned
// transaction carries the requester, oracle and notary signatures.
func (r *RequestToken) Run(ctx context.Context, draft attestation.AttestedFact) (*ledger.SignedTransaction, error) {
	r.step(StepSetUp)
	if !draft.Issuer.Key.Equal(r.Key.PublicKey) {
		return nil, ErrNotIssuer
	}
	oracleParty, err := r.Parties.Resolve(ctx, r.OracleName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve oracle %q: %w", r.OracleName, err)
	}
	notaryParty, err := r.Parties.Resolve(ctx, r.NotaryName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve notary %q: %w", r.NotaryName, err)
	}

	r.step(StepQueryingOracle)
	fact, err := r.Oracle.Query(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to query oracle: %w", err)
	}
	if err := matchesDraft(*fact, draft); err != nil {
		return nil, err
	}

	r.step(StepBuildingTx)
	build := r.build
	if build == nil {
		build = BuildIssuance
	}
	tx, err := build(*fact, oracleParty.Key, notaryParty).ToWireTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	r.step(StepVerifyingTx)
	if err := contract.Validate(tx); err != nil {
		return nil, err
	}

	r.step(StepSigning)
	stx, err := ledger.SignInitial(tx, r.Key)
	if err != nil {
		return nil, err
	}

	r.step(StepOracleSigning)
	view, err := ledger.BuildFilteredView(stx, oracle.DisclosurePredicate(oracleParty.Key))
	if err != nil {
		return nil, fmt.Errorf("failed to build filtered view: %w", err)
	}
	sig, err := r.Oracle.Sign(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("oracle refused to sign: %w", err)
	}
	if !sig.SignerKey.Equal(oracleParty.Key) {
		return nil, fmt.Errorf("%w: got %s", ErrWrongSigner, sig.SignerKey.Hex())
	}
	stx, err = stx.WithAdditionalSignature(*sig)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle signature: %w", err)
	}
	if err := stx.VerifyRequiredSignatures(); err != nil {
		return nil, err
	}

	r.step(StepFinalising)
	receipt, err := r.Notary.Finalize(ctx, stx)
	if err != nil {
		return nil, fmt.Errorf("failed to finalise transaction: %w", err)
	}
	if !receipt.Signature.SignerKey.Equal(notaryParty.Key) {
		return nil, fmt.Errorf("%w: notary receipt signed by %s", ErrWrongSigner, receipt.Signature.SignerKey.Hex())
	}
	stx, err = stx.WithAdditionalSignature(receipt.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid notary signature: %w", err)
	}

	r.step(StepDone)
	return stx, nil
}

// matchesDraft checks the oracle only filled in the token
func matchesDraft(fact, draft attestation.AttestedFact) error {
	withToken := draft
	withToken.Token = fact.Token
	if fact.Token == "" || !fact.Equal(withToken) {
		return ErrFactMismatch
	}
	return nil
}
