package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/config"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

var passport = attestation.IdentityDocument{ID: "P123", Kind: attestation.Passport}

func TestDraft(t *testing.T) {
	key, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	otherKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	bank := party.New("O=Bank, L=London, C=GB", otherKey.PublicKey)
	dir := party.NewDirectory(bank)
	cfg := &config.RequesterConfig{Name: "O=Alice, L=Paris, C=FR"}

	t.Run("self", func(t *testing.T) {
		draft, err := NewRunner(cfg, Request{Document: passport}, nil).draft(context.Background(), dir, key)
		require.NoError(t, err)
		assert.True(t, draft.Issuer.Key.Equal(key.PublicKey))
		assert.True(t, draft.Requester.Equal(draft.Issuer))
		assert.Empty(t, draft.Token)
		require.NoError(t, draft.ValidateDraft())
	})

	t.Run("counterparty", func(t *testing.T) {
		draft, err := NewRunner(cfg, Request{Document: passport, Counterparty: bank.Name}, nil).draft(context.Background(), dir, key)
		require.NoError(t, err)
		assert.True(t, draft.Requester.Equal(bank))
		assert.Equal(t, cfg.Name, draft.Issuer.Name)
	})

	t.Run("unknown counterparty", func(t *testing.T) {
		_, err := NewRunner(cfg, Request{Document: passport, Counterparty: "O=Nobody, L=Nowhere, C=XX"}, nil).draft(context.Background(), dir, key)
		require.ErrorIs(t, err, party.ErrNotFound)
	})
}

func TestWriteResult(t *testing.T) {
	issuer, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	notaryKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	self := party.New("O=Alice, L=Paris, C=FR", issuer.PublicKey)
	fact := attestation.NewAttestedFact(passport, "tok-abc", self, self)
	tx, err := ledger.NewBuilder(party.New("O=Notary, L=Zurich, C=CH", notaryKey.PublicKey)).
		AddOutputState(fact, "identity.v1").
		AddCommand(ledger.NewIssueCommand(attestation.IssueCommand{Fact: fact}, issuer.PublicKey)).
		ToWireTransaction()
	require.NoError(t, err)
	stx, err := ledger.SignInitial(tx, issuer)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, NewRunner(&config.RequesterConfig{}, Request{}, &out).writeResult(stx))

	var res Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, tx.ID.Hex(), res.TransactionID)
	assert.True(t, res.Fact.Equal(fact))
	require.Len(t, res.Signers, 1)
	assert.True(t, res.Signers[0].Equal(issuer.PublicKey))
}

func TestRunRejectsInvalidDocument(t *testing.T) {
	cfg := &config.RequesterConfig{
		Name:    "O=Alice, L=Paris, C=FR",
		Logging: config.LoggingConfig{Level: "error", Format: "json"},
	}
	err := NewRunner(cfg, Request{Document: attestation.IdentityDocument{Kind: attestation.Passport}}, nil).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid identity document")
}
