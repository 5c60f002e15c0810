package flow

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/contract"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/notary"
	"github.com/chainsafe/identity-oracle/pkg/oracle"
	"github.com/chainsafe/identity-oracle/pkg/party"
	"github.com/chainsafe/identity-oracle/pkg/registry"
	"github.com/chainsafe/identity-oracle/pkg/token"
	"github.com/chainsafe/identity-oracle/pkg/vault"
)

const (
	bankName   = "O=Bank, L=London, C=GB"
	oracleName = "O=Oracle, L=New York, C=US"
	notaryName = "O=Notary, L=Zurich, C=CH"
)

var passport = attestation.IdentityDocument{ID: "P123", Kind: attestation.Passport}

// fixedToken answers every query with the same token
type fixedToken string

func (f fixedToken) Resolve(_ context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	fact := draft
	fact.Token = string(f)
	return &fact, nil
}

// countingFinalizer records how often it was reached
type countingFinalizer struct {
	Finalizer
	calls int
}

func (c *countingFinalizer) Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*notary.Receipt, error) {
	c.calls++
	return c.Finalizer.Finalize(ctx, stx)
}

type network struct {
	bank      *keys.KeyPair
	oracleKey *keys.KeyPair
	notaryKey *keys.KeyPair
	parties   *party.Directory
	store     *vault.MemoryStore
}

func newNetwork(t *testing.T) *network {
	t.Helper()
	n := &network{store: vault.NewMemoryStore()}
	for _, kp := range []**keys.KeyPair{&n.bank, &n.oracleKey, &n.notaryKey} {
		k, err := keys.GenerateKeyPair()
		require.NoError(t, err)
		*kp = k
	}
	n.parties = party.NewDirectory(
		party.New(bankName, n.bank.PublicKey),
		party.New(oracleName, n.oracleKey.PublicKey),
		party.New(notaryName, n.notaryKey.PublicKey),
	)
	return n
}

func (n *network) draft() attestation.AttestedFact {
	bank := party.New(bankName, n.bank.PublicKey)
	return attestation.NewAttestedFact(passport, "", bank, bank)
}

func (n *network) flow(o Oracle, f Finalizer, obs Observer) *RequestToken {
	return &RequestToken{
		Key:        n.bank,
		Parties:    n.parties,
		OracleName: oracleName,
		NotaryName: notaryName,
		Oracle:     o,
		Notary:     f,
		Observer:   obs,
	}
}

func (n *network) notary() notary.Service {
	return notary.NewService(n.notaryKey, n.store)
}

func TestRunIssuesAttestedFact(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	var steps []Step
	r := n.flow(
		oracle.NewService(n.oracleKey, fixedToken("tok-abc"), oracle.AcceptAll),
		n.notary(),
		ObserverFunc(func(s Step) { steps = append(steps, s) }),
	)
	draft := n.draft()

	stx, err := r.Run(ctx, draft)
	require.NoError(t, err)

	assert.Equal(t, []Step{
		StepSetUp, StepQueryingOracle, StepBuildingTx, StepVerifyingTx,
		StepSigning, StepOracleSigning, StepFinalising, StepDone,
	}, steps)

	require.NoError(t, stx.VerifyRequiredSignatures())
	require.NoError(t, contract.Validate(stx.Tx))
	assert.Len(t, stx.Signatures, 3)
	for i, key := range []keys.PublicKey{n.bank.PublicKey, n.oracleKey.PublicKey, n.notaryKey.PublicKey} {
		assert.True(t, stx.Signatures[i].SignerKey.Equal(key))
	}

	recorded, err := n.store.GetFact(ctx, draft.UniqueID)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", recorded.Token)
	assert.Equal(t, passport, recorded.Identity)
}

func TestRunRejectsMismatchedCommandFact(t *testing.T) {
	n := newNetwork(t)
	fin := &countingFinalizer{Finalizer: n.notary()}
	r := n.flow(oracle.NewService(n.oracleKey, fixedToken("tok-abc"), oracle.AcceptAll), fin, nil)
	r.build = func(fact attestation.AttestedFact, oracleKey keys.PublicKey, notaryParty party.Party) *ledger.Builder {
		wrong := fact
		wrong.Token = "tok-wrong"
		return ledger.NewBuilder(notaryParty).
			AddOutputState(fact, contract.ProgramID).
			AddCommand(ledger.NewIssueCommand(attestation.IssueCommand{Fact: wrong}, fact.Issuer.Key, oracleKey))
	}

	_, err := r.Run(context.Background(), n.draft())
	require.ErrorIs(t, err, contract.ErrContractViolation)
	var violation *contract.ViolationError
	require.ErrorAs(t, err, &violation)
	assert.Len(t, violation.Violations, 1)
	assert.Zero(t, fin.calls)
}

func TestRunAbortsBeforeFinality(t *testing.T) {
	n := newNetwork(t)
	stranger, err := keys.GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name   string
		oracle Oracle
		mutate func(r *RequestToken)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "oracle unknown",
			oracle: oracle.NewService(n.oracleKey, fixedToken("tok-abc"), nil),
			mutate: func(r *RequestToken) { r.OracleName = "O=Nobody, L=Nowhere, C=XX" },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, party.ErrNotFound) },
		},
		{
			name:   "draft from another issuer",
			oracle: oracle.NewService(n.oracleKey, fixedToken("tok-abc"), nil),
			mutate: func(r *RequestToken) { r.Key = stranger },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrNotIssuer) },
		},
		{
			name:   "oracle finds nothing",
			oracle: oracle.NewService(n.oracleKey, token.NewSource(registry.NewStatic(), token.NewIssuer([]byte("secret"), oracleName, time.Hour)), nil),
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))
			},
		},
		{
			name: "oracle rejects fact",
			oracle: oracle.NewService(n.oracleKey, fixedToken("tok-abc"), oracle.CheckerFunc(func(context.Context, attestation.AttestedFact) error {
				return errors.New("token does not match")
			})),
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, oracle.ErrFactRejected) },
		},
		{
			name:   "answered by the wrong key",
			oracle: oracle.NewService(stranger, fixedToken("tok-abc"), nil),
			check: func(t *testing.T, err error) {
				// the stranger is not among the command signers
				assert.ErrorIs(t, err, oracle.ErrNotRequiredSigner)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fin := &countingFinalizer{Finalizer: n.notary()}
			r := n.flow(tt.oracle, fin, nil)
			if tt.mutate != nil {
				tt.mutate(r)
			}
			_, err := r.Run(context.Background(), n.draft())
			require.Error(t, err)
			tt.check(t, err)
			assert.Zero(t, fin.calls)
		})
	}
}

func TestRunOverHTTPWithTokenChecks(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	secret := []byte("0123456789abcdef0123456789abcdef")

	reg := registry.NewStatic(registry.Record{Document: passport, Subject: "alice", Valid: true})
	oracleSvc := oracle.NewService(
		n.oracleKey,
		token.NewSource(reg, token.NewIssuer(secret, oracleName, time.Hour)),
		token.NewChecker(secret, oracleName),
	)

	router := chi.NewRouter()
	oracle.RegisterRoutes(router, oracleSvc, zap.NewNop())
	notary.RegisterRoutes(router, n.notary(), zap.NewNop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	r := n.flow(oracle.NewClient(srv.URL), notary.NewClient(srv.URL, 0), NewLogObserver(zap.NewNop()))
	draft := n.draft()

	stx, err := r.Run(ctx, draft)
	require.NoError(t, err)
	require.NoError(t, stx.VerifyRequiredSignatures())

	fact, err := notary.NewClient(srv.URL, 0).Fact(ctx, draft.UniqueID)
	require.NoError(t, err)
	assert.NotEmpty(t, fact.Token)
	require.NoError(t, token.NewChecker(secret, oracleName).Check(ctx, *fact))
}

func TestStepString(t *testing.T) {
	assert.Equal(t, "SET_UP", StepSetUp.String())
	assert.Equal(t, "FINALISING", StepFinalising.String())
	assert.Equal(t, "UNKNOWN", Step(42).String())
}
