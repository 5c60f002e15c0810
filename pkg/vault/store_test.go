package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

// issuance builds a signed single-fact transaction for identity id
func issuance(t *testing.T, id string) *ledger.SignedTransaction {
	t.Helper()
	return issuanceWith(t, id, nil)
}

// issuanceWith is issuance plus an opaque output of a foreign contract when opaque is set
func issuanceWith(t *testing.T, id string, opaque json.RawMessage) *ledger.SignedTransaction {
	t.Helper()
	issuerKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	notaryKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	bank := party.New("O=Bank, L=London, C=GB", issuerKey.PublicKey)
	fact := attestation.NewAttestedFact(
		attestation.IdentityDocument{ID: id, Kind: attestation.Passport},
		"tok-"+id, bank, bank,
	)
	b := ledger.NewBuilder(party.New("O=Notary, L=Zurich, C=CH", notaryKey.PublicKey)).
		AddOutputState(fact, "identity.v1").
		AddCommand(ledger.NewIssueCommand(attestation.IssueCommand{Fact: fact}, issuerKey.PublicKey))
	if opaque != nil {
		b.AddOpaqueOutput("cash.v1", opaque)
	}
	tx, err := b.ToWireTransaction()
	require.NoError(t, err)
	stx, err := ledger.SignInitial(tx, issuerKey)
	require.NoError(t, err)
	return stx
}

func onlyFact(t *testing.T, stx *ledger.SignedTransaction) attestation.AttestedFact {
	t.Helper()
	facts := factsOf(stx.Tx)
	require.Len(t, facts, 1)
	return facts[0]
}

func TestMemoryStoreRecordAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	stx := issuance(t, "P123")

	require.NoError(t, store.Record(ctx, stx, time.Now()))

	got, err := store.GetTransaction(ctx, stx.ID())
	require.NoError(t, err)
	assert.Equal(t, stx.ID(), got.ID())

	fact := onlyFact(t, stx)
	gotFact, err := store.GetFact(ctx, fact.UniqueID)
	require.NoError(t, err)
	assert.True(t, fact.Equal(*gotFact))
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	stx := issuance(t, "P123")
	require.NoError(t, store.Record(ctx, stx, time.Now()))

	err := store.Record(ctx, stx, time.Now())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetTransaction(ctx, issuance(t, "P1").ID())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetFact(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFactsOfSkipsOpaqueOutputs(t *testing.T) {
	stx := issuance(t, "P123")
	tx := *stx.Tx
	tx.Outputs = append([]ledger.TransactionState{{Kind: ledger.StateOpaque, Contract: "cash"}}, tx.Outputs...)
	assert.Len(t, factsOf(&tx), 1)
}

func TestTransactionDaoKeepsOpaquePayload(t *testing.T) {
	stx := issuanceWith(t, "P123", json.RawMessage(`{"b":1,"a":2}`))

	dao, err := toTransactionDao(stx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, stx.ID().Hex(), dao.ID)

	got, err := fromTransactionDao(dao)
	require.NoError(t, err)
	require.NoError(t, got.Tx.CheckFrozen())
	assert.Equal(t, stx.ID(), got.ID())
	assert.JSONEq(t, `{"b":1,"a":2}`, string(got.Tx.Outputs[1].Opaque))
	assert.True(t, bytes.Contains(dao.Payload, []byte(`{"b":1,"a":2}`)))
}

func TestTransactionDaoRejectsNormalisedPayload(t *testing.T) {
	stx := issuanceWith(t, "P123", json.RawMessage(`{"b":1,"a":2}`))
	dao, err := toTransactionDao(stx, time.Now())
	require.NoError(t, err)

	// reordered keys, as a normalising JSON column would print them
	dao.Payload = bytes.Replace(dao.Payload, []byte(`{"b":1,"a":2}`), []byte(`{"a": 2, "b": 1}`), 1)
	_, err = fromTransactionDao(dao)
	assert.ErrorIs(t, err, ledger.ErrNotFrozen)
}
