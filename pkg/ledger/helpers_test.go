package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

type fixture struct {
	issuer *keys.KeyPair
	oracle *keys.KeyPair
	notary *keys.KeyPair
	fact   attestation.AttestedFact
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	for _, kp := range []**keys.KeyPair{&f.issuer, &f.oracle, &f.notary} {
		k, err := keys.GenerateKeyPair()
		require.NoError(t, err)
		*kp = k
	}
	issuer := party.New("O=Bank, L=London, C=GB", f.issuer.PublicKey)
	f.fact = attestation.NewAttestedFact(
		attestation.IdentityDocument{ID: "P123", Kind: attestation.Passport},
		"tok-abc",
		issuer,
		issuer,
	)
	return f
}

func (f *fixture) notaryParty() party.Party {
	return party.New("O=Notary, L=Zurich, C=CH", f.notary.PublicKey)
}

// builder returns the canonical issuance: one fact output, one Issue command signed by
// the issuer and the oracle.
func (f *fixture) builder() *Builder {
	return NewBuilder(f.notaryParty()).
		AddOutputState(f.fact, "identity.v1").
		AddCommand(NewIssueCommand(attestation.IssueCommand{Fact: f.fact}, f.issuer.PublicKey, f.oracle.PublicKey))
}

func (f *fixture) signed(t *testing.T, b *Builder) *SignedTransaction {
	t.Helper()
	tx, err := b.ToWireTransaction()
	require.NoError(t, err)
	stx, err := SignInitial(tx, f.issuer)
	require.NoError(t, err)
	return stx
}

func (f *fixture) oraclePredicate() Predicate {
	return func(v ComponentValue) bool {
		return v.Group == GroupCommands &&
			v.Command.Kind == CommandIssue &&
			v.Command.HasSigner(f.oracle.PublicKey)
	}
}
