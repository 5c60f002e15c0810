package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/oracle/mocks"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

type fixture struct {
	issuer *keys.KeyPair
	oracle *keys.KeyPair
	notary party.Party
	fact   attestation.AttestedFact
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	issuer, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	oracleKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)
	notaryKey, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	bank := party.New("O=Bank, L=London, C=GB", issuer.PublicKey)
	return &fixture{
		issuer: issuer,
		oracle: oracleKey,
		notary: party.New("O=Notary, L=Zurich, C=CH", notaryKey.PublicKey),
		fact: attestation.NewAttestedFact(
			attestation.IdentityDocument{ID: "P123", Kind: attestation.Passport},
			"tok-abc", bank, bank,
		),
	}
}

// view builds the canonical issuance with the given command signers and filters it with
// the oracle's disclosure predicate.
func (f *fixture) view(t *testing.T, signers ...keys.PublicKey) *ledger.FilteredView {
	t.Helper()
	return f.viewWith(t, DisclosurePredicate(f.oracle.PublicKey), signers...)
}

// viewWith builds the canonical issuance, with an extra opaque command the oracle also
// signs, and discloses what pred selects.
func (f *fixture) viewWith(t *testing.T, pred ledger.Predicate, signers ...keys.PublicKey) *ledger.FilteredView {
	t.Helper()
	tx, err := ledger.NewBuilder(f.notary).
		AddOutputState(f.fact, "identity.v1").
		AddCommand(ledger.NewIssueCommand(attestation.IssueCommand{Fact: f.fact}, signers...)).
		AddCommand(ledger.NewOpaqueCommand("cash.Move", json.RawMessage(`{}`), f.oracle.PublicKey)).
		ToWireTransaction()
	require.NoError(t, err)
	stx, err := ledger.SignInitial(tx, f.issuer)
	require.NoError(t, err)

	view, err := ledger.BuildFilteredView(stx, pred)
	require.NoError(t, err)
	return view
}

func revealAll(ledger.ComponentValue) bool { return true }

// issueCommands reveals every Issue command whoever its signers are
func issueCommands(v ledger.ComponentValue) bool {
	return v.Group == ledger.GroupCommands && v.Command.Kind == ledger.CommandIssue
}

func TestDisclosurePredicate(t *testing.T) {
	f := newFixture(t)
	pred := DisclosurePredicate(f.oracle.PublicKey)

	issue := ledger.NewIssueCommand(attestation.IssueCommand{Fact: f.fact}, f.issuer.PublicKey, f.oracle.PublicKey)
	other := ledger.NewIssueCommand(attestation.IssueCommand{Fact: f.fact}, f.issuer.PublicKey)
	opaque := ledger.NewOpaqueCommand("cash.Move", nil, f.oracle.PublicKey)
	output := ledger.TransactionState{Kind: ledger.StateAttestedFact, Fact: &f.fact}

	assert.True(t, pred(ledger.ComponentValue{Group: ledger.GroupCommands, Command: &issue}))
	assert.False(t, pred(ledger.ComponentValue{Group: ledger.GroupCommands, Command: &other}))
	assert.False(t, pred(ledger.ComponentValue{Group: ledger.GroupCommands, Command: &opaque}))
	assert.False(t, pred(ledger.ComponentValue{Group: ledger.GroupOutputs, Output: &output}))
	assert.False(t, pred(ledger.ComponentValue{Group: ledger.GroupNotary, Notary: &f.notary}))
}

func TestDecide(t *testing.T) {
	f := newFixture(t)

	verified, err := f.view(t, f.issuer.PublicKey, f.oracle.PublicKey).Verify()
	require.NoError(t, err)
	issues, decision := Decide(verified, f.oracle.PublicKey)
	assert.Equal(t, DecisionSigned, decision)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].Fact.Equal(f.fact))

	tests := []struct {
		name string
		view *ledger.FilteredView
	}{
		{"oracle not a signer", f.viewWith(t, issueCommands, f.issuer.PublicKey)},
		{"everything revealed", f.viewWith(t, revealAll, f.issuer.PublicKey, f.oracle.PublicKey)},
		{"notary revealed", f.viewWith(t, func(v ledger.ComponentValue) bool {
			return issueCommands(v) || v.Group == ledger.GroupNotary
		}, f.issuer.PublicKey, f.oracle.PublicKey)},
		{"only foreign command", f.viewWith(t, func(v ledger.ComponentValue) bool {
			return v.Group == ledger.GroupCommands && v.Command.Kind == ledger.CommandOpaque
		}, f.issuer.PublicKey, f.oracle.PublicKey)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verified, err := tt.view.Verify()
			require.NoError(t, err)
			issues, decision := Decide(verified, f.oracle.PublicKey)
			assert.Equal(t, DecisionRejected, decision)
			assert.Empty(t, issues)
		})
	}
}

func TestSignRequiresOracleSigner(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.oracle, nil, AcceptAll)

	// the oracle key only appears on the opaque command, which stays hidden
	_, err := svc.Sign(context.Background(), f.viewWith(t, issueCommands, f.issuer.PublicKey))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRequiredSigner)
	assert.True(t, apperrors.Is(err, apperrors.CategoryUnauthorized))
}

func TestSignRejectsOverDisclosedView(t *testing.T) {
	f := newFixture(t)
	var checked int
	svc := NewService(f.oracle, nil, CheckerFunc(func(context.Context, attestation.AttestedFact) error {
		checked++
		return nil
	}))

	view := f.viewWith(t, revealAll, f.issuer.PublicKey, f.oracle.PublicKey)
	require.Len(t, view.Components, 4)

	sig, err := svc.Sign(context.Background(), view)
	require.Error(t, err)
	assert.Nil(t, sig)
	assert.ErrorIs(t, err, ErrNotRequiredSigner)
	assert.True(t, apperrors.Is(err, apperrors.CategoryUnauthorized))
	assert.Zero(t, checked)
}

func TestSignIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := NewLog(NewMetrics(NewService(f.oracle, nil, nil)), zap.NewNop())
	view := f.view(t, f.issuer.PublicKey, f.oracle.PublicKey)

	s1, err := svc.Sign(context.Background(), view)
	require.NoError(t, err)
	s2, err := svc.Sign(context.Background(), view)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, view.ID, s1.TransactionID)
	assert.True(t, s1.SignerKey.Equal(f.oracle.PublicKey))
	require.NoError(t, s1.Verify())
}

func TestSignRejectsInvalidProof(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.oracle, nil, AcceptAll)

	view := f.view(t, f.issuer.PublicKey, f.oracle.PublicKey)
	view.Components[0].Nonce[3] ^= 0x01

	_, err := svc.Sign(context.Background(), view)
	assert.ErrorIs(t, err, ledger.ErrInvalidProof)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))

	_, err = svc.Sign(context.Background(), &ledger.FilteredView{})
	assert.ErrorIs(t, err, ledger.ErrEmptyView)
}

func TestSignRunsFactChecker(t *testing.T) {
	f := newFixture(t)
	errBadToken := errors.New("bad token")

	var checked []attestation.AttestedFact
	checker := CheckerFunc(func(_ context.Context, fact attestation.AttestedFact) error {
		checked = append(checked, fact)
		return errBadToken
	})
	svc := NewService(f.oracle, nil, checker)

	_, err := svc.Sign(context.Background(), f.view(t, f.issuer.PublicKey, f.oracle.PublicKey))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFactRejected)
	assert.ErrorIs(t, err, errBadToken)
	assert.True(t, apperrors.Is(err, apperrors.CategoryForbidden))
	require.Len(t, checked, 1)
	assert.True(t, checked[0].Equal(f.fact))
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := f.fact
	draft.Token = ""

	source := mocks.NewFactSource(t)
	source.EXPECT().Resolve(ctx, draft).Return(&f.fact, nil).Once()

	svc := NewService(f.oracle, source, AcceptAll)
	fact, err := svc.Query(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", fact.Token)
}

func TestQueryRejectsIncompleteDraft(t *testing.T) {
	f := newFixture(t)
	source := mocks.NewFactSource(t)
	svc := NewService(f.oracle, source, AcceptAll)

	draft := f.fact
	draft.Identity.ID = ""
	_, err := svc.Query(context.Background(), draft)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	source.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestQueryRejectsMissingFact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	source := mocks.NewFactSource(t)
	source.EXPECT().Resolve(ctx, f.fact).Return(nil, nil).Once()

	fact, err := NewService(f.oracle, source, AcceptAll).Query(ctx, f.fact)
	assert.Nil(t, fact)
	assert.True(t, apperrors.Is(err, apperrors.CategoryGeneralError))
}

func TestQueryRejectsAlteredIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	altered := f.fact
	altered.Identity.ID = "P999"

	source := mocks.NewFactSource(t)
	source.EXPECT().Resolve(ctx, f.fact).Return(&altered, nil).Once()

	_, err := NewService(f.oracle, source, AcceptAll).Query(ctx, f.fact)
	assert.True(t, apperrors.Is(err, apperrors.CategoryGeneralError))
}
