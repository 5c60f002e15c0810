// Package attestation holds the attested fact, the ledger state that carries it and the
// command declaring the attestation.
package attestation

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chainsafe/identity-oracle/pkg/party"
)

// IdentityKind is the type of identity document submitted by the requester.
type IdentityKind string

// Passport is the only supported document type
const Passport IdentityKind = "PASSPORT"

// Valid reports whether k is a known kind
func (k IdentityKind) Valid() bool {
	switch k {
	case Passport:
		return true
	default:
		return false
	}
}

// UnmarshalText rejects unknown kinds
func (k *IdentityKind) UnmarshalText(b []byte) error {
	kind := IdentityKind(b)
	if !kind.Valid() {
		return fmt.Errorf("unknown identity kind %q", string(b))
	}
	*k = kind
	return nil
}

// IdentityDocument identifies the subject of an attestation
type IdentityDocument struct {
	ID   string       `json:"id"`
	Kind IdentityKind `json:"kind"`
}

// Validate checks the document is complete
func (d IdentityDocument) Validate() error {
	if d.ID == "" {
		return errors.New("identity id is required")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("unknown identity kind %q", d.Kind)
	}
	return nil
}

// AttestedFact is the ledger state claiming that an identity maps to a token.
// It is owned jointly by issuer and requester; the oracle only appears as a required signer.
type AttestedFact struct {
	Identity  IdentityDocument `json:"identity"`
	Token     string           `json:"token"`
	Issuer    party.Party      `json:"issuer"`
	Requester party.Party      `json:"requester"`
	UniqueID  uuid.UUID        `json:"unique_id"`
}

// NewAttestedFact creates a draft fact with a fresh unique id
func NewAttestedFact(identity IdentityDocument, token string, issuer, requester party.Party) AttestedFact {
	return AttestedFact{
		Identity:  identity,
		Token:     token,
		Issuer:    issuer,
		Requester: requester,
		UniqueID:  uuid.New(),
	}
}

// Participants returns the parties with visibility of the state
func (f AttestedFact) Participants() []party.Party {
	return []party.Party{f.Issuer, f.Requester}
}

// Equal compares two facts field for field
func (f AttestedFact) Equal(other AttestedFact) bool {
	return f.Identity == other.Identity &&
		f.Token == other.Token &&
		f.Issuer.Equal(other.Issuer) &&
		f.Requester.Equal(other.Requester) &&
		f.UniqueID == other.UniqueID
}

// ValidateDraft checks the fields the requester must supply before querying the oracle
func (f AttestedFact) ValidateDraft() error {
	if err := f.Identity.Validate(); err != nil {
		return err
	}
	if len(f.Issuer.Key) == 0 {
		return errors.New("issuer is required")
	}
	if len(f.Requester.Key) == 0 {
		return errors.New("requester is required")
	}
	if f.UniqueID == uuid.Nil {
		return errors.New("unique id is required")
	}
	return nil
}

// Validate checks the fact is complete, including the attested token
func (f AttestedFact) Validate() error {
	if err := f.ValidateDraft(); err != nil {
		return err
	}
	if f.Token == "" {
		return errors.New("token is required")
	}
	return nil
}

// IssueCommand declares the issuance of an AttestedFact. It carries a copy of the fact
// so validators and the oracle can cross-check it against the output state.
type IssueCommand struct {
	Fact AttestedFact `json:"fact"`
}

// String implements fmt.Stringer for logging
func (c IssueCommand) String() string {
	b, _ := json.Marshal(c.Fact.Identity)
	return "Issue" + string(b)
}
