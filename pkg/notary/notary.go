// Package notary is the finality service for AttestedFact issuances. It checks a fully
// signed transaction, co-signs it with the notary key and records it in the vault.
package notary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/contract"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/vault"
)

// ErrWrongNotary is returned when a transaction names a different notary
var ErrWrongNotary = errors.New("transaction is not assigned to this notary")

// Receipt acknowledges a finalised transaction
type Receipt struct {
	TransactionID common.Hash      `json:"transaction_id"`
	Signature     ledger.Signature `json:"signature"`
	FinalizedAt   time.Time        `json:"finalized_at"`
}

// Service finalises transactions and serves what it has recorded
type Service interface {
	Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*Receipt, error)
	Transaction(ctx context.Context, id common.Hash) (*ledger.SignedTransaction, error)
	Fact(ctx context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error)
}

type notaryService struct {
	key   *keys.KeyPair
	store vault.Store
	now   func() time.Time
}

// NewService creates a notary signing with key and recording into store
func NewService(key *keys.KeyPair, store vault.Store) Service {
	return &notaryService{key: key, store: store, now: time.Now}
}

// Finalize runs the finality checks in order: frozen id, notary assignment,
// required signatures, contract rules. Only then is the notary signature added and
// the transaction recorded. A transaction id or fact id seen before is a conflict.
func (s *notaryService) Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*Receipt, error) {
	if stx == nil || stx.Tx == nil {
		return nil, apperrors.BadRequestError(nil, "transaction is missing")
	}
	if err := stx.Tx.CheckFrozen(); err != nil {
		return nil, apperrors.BadRequestError(err, "transaction is not frozen")
	}
	if !stx.Tx.Notary.Key.Equal(s.key.PublicKey) {
		return nil, apperrors.BadRequestError(ErrWrongNotary, ErrWrongNotary.Error())
	}
	if err := stx.VerifyRequiredSignatures(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid signatures")
	}
	if err := contract.Validate(stx.Tx); err != nil {
		return nil, apperrors.BadRequestError(err, err.Error())
	}

	sig, err := ledger.Sign(s.key, stx.ID())
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to sign transaction: %w", err))
	}
	final, err := stx.WithAdditionalSignature(sig)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}

	finalizedAt := s.now().UTC()
	if err := s.store.Record(ctx, final, finalizedAt); err != nil {
		if errors.Is(err, vault.ErrDuplicate) {
			return nil, apperrors.ConflictError(err, "transaction or fact already finalised")
		}
		return nil, apperrors.DependencyError(err, "failed to record transaction")
	}

	return &Receipt{TransactionID: stx.ID(), Signature: sig, FinalizedAt: finalizedAt}, nil
}

// Transaction returns a finalised transaction with every signature, the notary's included
func (s *notaryService) Transaction(ctx context.Context, id common.Hash) (*ledger.SignedTransaction, error) {
	stx, err := s.store.GetTransaction(ctx, id)
	if errors.Is(err, vault.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "transaction not found")
	}
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to read transaction")
	}
	return stx, nil
}

// Fact returns a finalised AttestedFact by its unique id
func (s *notaryService) Fact(ctx context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error) {
	fact, err := s.store.GetFact(ctx, uniqueID)
	if errors.Is(err, vault.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "fact not found")
	}
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to read fact")
	}
	return fact, nil
}
