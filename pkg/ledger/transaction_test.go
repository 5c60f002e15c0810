package ledger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/identity-oracle/pkg/keys"
)

func TestToWireTransactionFreezes(t *testing.T) {
	f := newFixture(t)
	tx, err := f.builder().ToWireTransaction()
	require.NoError(t, err)

	assert.NotEqual(t, common.Hash{}, tx.ID)
	assert.Len(t, tx.PrivacySalt, privacySaltSize)
	require.NoError(t, tx.CheckFrozen())
}

func TestToWireTransactionSaltsEachTransaction(t *testing.T) {
	f := newFixture(t)
	b := f.builder()

	tx1, err := b.ToWireTransaction()
	require.NoError(t, err)
	tx2, err := b.ToWireTransaction()
	require.NoError(t, err)

	assert.NotEqual(t, tx1.ID, tx2.ID)
}

func TestToWireTransactionDeterministicForSalt(t *testing.T) {
	f := newFixture(t)
	salt := bytes.Repeat([]byte{7}, privacySaltSize)

	b1 := f.builder()
	b1.salt = bytes.NewReader(salt)
	b2 := f.builder()
	b2.salt = bytes.NewReader(salt)

	tx1, err := b1.ToWireTransaction()
	require.NoError(t, err)
	tx2, err := b2.ToWireTransaction()
	require.NoError(t, err)
	assert.Equal(t, tx1.ID, tx2.ID)
}

func TestToWireTransactionRequiresCommandsAndNotary(t *testing.T) {
	f := newFixture(t)

	_, err := NewBuilder(f.notaryParty()).AddOutputState(f.fact, "identity.v1").ToWireTransaction()
	assert.Error(t, err)

	noNotary := f.builder()
	noNotary.notary.Key = nil
	_, err = noNotary.ToWireTransaction()
	assert.Error(t, err)

	noSigners := NewBuilder(f.notaryParty()).AddCommand(NewOpaqueCommand("x", json.RawMessage(`{}`)))
	_, err = noSigners.ToWireTransaction()
	assert.Error(t, err)
}

func TestCheckFrozenDetectsTampering(t *testing.T) {
	f := newFixture(t)
	tx, err := f.builder().ToWireTransaction()
	require.NoError(t, err)

	tx.Outputs[0].Fact.Token = "tok-other"
	assert.ErrorIs(t, tx.CheckFrozen(), ErrNotFrozen)

	var nilTx *WireTransaction
	assert.ErrorIs(t, nilTx.CheckFrozen(), ErrNotFrozen)
}

func TestBuilderSnapshotIsIndependent(t *testing.T) {
	f := newFixture(t)
	b := f.builder()
	tx, err := b.ToWireTransaction()
	require.NoError(t, err)

	b.AddInputState(StateRef{TxID: tx.ID})
	b.commands[0].Issue.Fact.Token = "changed"

	require.NoError(t, tx.CheckFrozen())
	assert.Empty(t, tx.Inputs)
}

func TestWireTransactionJSONKeepsID(t *testing.T) {
	f := newFixture(t)
	tx, err := f.builder().
		AddOpaqueOutput("cash.v1", json.RawMessage(`{"amount":"10"}`)).
		AddCommand(NewOpaqueCommand("cash.Move", json.RawMessage(`{"to":"bob"}`), f.issuer.PublicKey)).
		ToWireTransaction()
	require.NoError(t, err)

	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var decoded WireTransaction
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NoError(t, decoded.CheckFrozen())
	assert.Equal(t, tx.ID, decoded.ID)
}

func TestRequiredSignersDeduplicates(t *testing.T) {
	f := newFixture(t)
	tx, err := f.builder().
		AddCommand(NewOpaqueCommand("cash.Move", nil, f.issuer.PublicKey)).
		ToWireTransaction()
	require.NoError(t, err)

	assert.Equal(t, []keys.PublicKey{f.issuer.PublicKey, f.oracle.PublicKey}, tx.RequiredSigners())
}
