// Package vault persists finalised transactions and the attested facts they issue.
package vault

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

var (
	// ErrNotFound is returned when no transaction or fact matches
	ErrNotFound = errors.New("not found in vault")
	// ErrDuplicate is returned when a transaction id or fact unique id is already recorded
	ErrDuplicate = errors.New("already recorded in vault")
)

// Store records finalised transactions
//
//go:generate mockery --name Store --output mocks --outpkg mocks --filename mock_store.go --with-expecter
type Store interface {
	// Record stores stx and every AttestedFact it outputs atomically
	Record(ctx context.Context, stx *ledger.SignedTransaction, finalizedAt time.Time) error
	GetTransaction(ctx context.Context, id common.Hash) (*ledger.SignedTransaction, error)
	GetFact(ctx context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error)
}

func factsOf(tx *ledger.WireTransaction) []attestation.AttestedFact {
	var facts []attestation.AttestedFact
	for _, out := range tx.Outputs {
		if out.Kind == ledger.StateAttestedFact && out.Fact != nil {
			facts = append(facts, *out.Fact)
		}
	}
	return facts
}

// MemoryStore is an in-memory Store. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	txs   map[common.Hash]*ledger.SignedTransaction
	facts map[uuid.UUID]attestation.AttestedFact
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txs:   make(map[common.Hash]*ledger.SignedTransaction),
		facts: make(map[uuid.UUID]attestation.AttestedFact),
	}
}

// Record implements Store
func (m *MemoryStore) Record(_ context.Context, stx *ledger.SignedTransaction, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.txs[stx.ID()]; ok {
		return ErrDuplicate
	}
	facts := factsOf(stx.Tx)
	seen := make(map[uuid.UUID]struct{}, len(facts))
	for _, f := range facts {
		if _, ok := m.facts[f.UniqueID]; ok {
			return ErrDuplicate
		}
		if _, ok := seen[f.UniqueID]; ok {
			return ErrDuplicate
		}
		seen[f.UniqueID] = struct{}{}
	}

	m.txs[stx.ID()] = stx
	for _, f := range facts {
		m.facts[f.UniqueID] = f
	}
	return nil
}

// GetTransaction implements Store
func (m *MemoryStore) GetTransaction(_ context.Context, id common.Hash) (*ledger.SignedTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stx, ok := m.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stx, nil
}

// GetFact implements Store
func (m *MemoryStore) GetFact(_ context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facts[uniqueID]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}
