// Package ledger implements the transaction model of the attestation protocol: frozen
// transactions identified by the root of their component digest tree, signatures over that
// id, and filtered views that disclose a subset of components with inclusion proofs.
package ledger

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger/merkle"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

const privacySaltSize = 32

// WireTransaction is a frozen transaction. Its ID is the Merkle root over all
// components in canonical order: inputs, outputs, commands, notary.
type WireTransaction struct {
	Inputs      []StateRef         `json:"inputs"`
	Outputs     []TransactionState `json:"outputs"`
	Commands    []Command          `json:"commands"`
	Notary      party.Party        `json:"notary"`
	PrivacySalt hexutil.Bytes      `json:"privacy_salt"`
	ID          common.Hash        `json:"id"`
}

type component struct {
	value ComponentValue
	nonce common.Hash
	data  []byte
	leaf  common.Hash
}

func (tx *WireTransaction) values() []ComponentValue {
	out := make([]ComponentValue, 0, len(tx.Inputs)+len(tx.Outputs)+len(tx.Commands)+1)
	for i := range tx.Inputs {
		out = append(out, ComponentValue{Group: GroupInputs, Index: uint32(i), Input: &tx.Inputs[i]})
	}
	for i := range tx.Outputs {
		out = append(out, ComponentValue{Group: GroupOutputs, Index: uint32(i), Output: &tx.Outputs[i]})
	}
	for i := range tx.Commands {
		out = append(out, ComponentValue{Group: GroupCommands, Index: uint32(i), Command: &tx.Commands[i]})
	}
	out = append(out, ComponentValue{Group: GroupNotary, Index: 0, Notary: &tx.Notary})
	return out
}

func (tx *WireTransaction) components() ([]component, error) {
	values := tx.values()
	out := make([]component, len(values))
	for i, v := range values {
		data, err := v.encode()
		if err != nil {
			return nil, err
		}
		nonce := componentNonce(tx.PrivacySalt, v.Group, v.Index)
		out[i] = component{
			value: v,
			nonce: nonce,
			data:  data,
			leaf:  componentLeaf(nonce, v.Group, v.Index, data),
		}
	}
	return out, nil
}

func leavesOf(components []component) []common.Hash {
	leaves := make([]common.Hash, len(components))
	for i, c := range components {
		leaves[i] = c.leaf
	}
	return leaves
}

func (tx *WireTransaction) computeID() (common.Hash, error) {
	components, err := tx.components()
	if err != nil {
		return common.Hash{}, err
	}
	return merkle.Root(leavesOf(components))
}

// CheckFrozen verifies the stored id still matches the components
func (tx *WireTransaction) CheckFrozen() error {
	if tx == nil || tx.ID == (common.Hash{}) || len(tx.PrivacySalt) != privacySaltSize {
		return ErrNotFrozen
	}
	id, err := tx.computeID()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFrozen, err)
	}
	if id != tx.ID {
		return fmt.Errorf("%w: id %s does not match components (%s)", ErrNotFrozen, tx.ID.Hex(), id.Hex())
	}
	return nil
}

// RequiredSigners returns the union of all command signers, in first-seen order
func (tx *WireTransaction) RequiredSigners() []keys.PublicKey {
	var out []keys.PublicKey
	for _, cmd := range tx.Commands {
		for _, k := range cmd.Signers {
			if !keys.Contains(out, k) {
				out = append(out, k)
			}
		}
	}
	return out
}

// Builder accumulates components of a transaction under construction.
// It is mutable; ToWireTransaction freezes a snapshot.
type Builder struct {
	notary   party.Party
	inputs   []StateRef
	outputs  []TransactionState
	commands []Command
	salt     io.Reader
}

// NewBuilder creates a builder for a transaction notarised by notary
func NewBuilder(notary party.Party) *Builder {
	return &Builder{notary: notary, salt: rand.Reader}
}

// AddInputState consumes an existing state
func (b *Builder) AddInputState(ref StateRef) *Builder {
	b.inputs = append(b.inputs, ref)
	return b
}

// AddOutputState adds an attested fact output governed by contract
func (b *Builder) AddOutputState(fact attestation.AttestedFact, contract string) *Builder {
	b.outputs = append(b.outputs, TransactionState{Kind: StateAttestedFact, Contract: contract, Fact: &fact})
	return b
}

// AddOpaqueOutput adds an output of a foreign contract
func (b *Builder) AddOpaqueOutput(contract string, payload json.RawMessage) *Builder {
	b.outputs = append(b.outputs, TransactionState{Kind: StateOpaque, Contract: contract, Opaque: payload})
	return b
}

// AddCommand adds a command and its required signers
func (b *Builder) AddCommand(cmd Command) *Builder {
	b.commands = append(b.commands, cmd)
	return b
}

// ToWireTransaction freezes the builder's components and computes the transaction id
func (b *Builder) ToWireTransaction() (*WireTransaction, error) {
	if len(b.notary.Key) == 0 {
		return nil, errors.New("transaction requires a notary")
	}
	if len(b.commands) == 0 {
		return nil, errors.New("transaction requires at least one command")
	}
	for i, cmd := range b.commands {
		if len(cmd.Signers) == 0 {
			return nil, fmt.Errorf("command %d has no required signers", i)
		}
	}

	salt := make([]byte, privacySaltSize)
	if _, err := io.ReadFull(b.salt, salt); err != nil {
		return nil, fmt.Errorf("failed to generate privacy salt: %w", err)
	}

	tx := &WireTransaction{
		Inputs:      append([]StateRef{}, b.inputs...),
		Outputs:     cloneStates(b.outputs),
		Commands:    cloneCommands(b.commands),
		Notary:      b.notary,
		PrivacySalt: salt,
	}
	id, err := tx.computeID()
	if err != nil {
		return nil, fmt.Errorf("failed to compute transaction id: %w", err)
	}
	tx.ID = id
	return tx, nil
}

func cloneStates(in []TransactionState) []TransactionState {
	out := make([]TransactionState, len(in))
	for i, s := range in {
		if s.Fact != nil {
			fact := *s.Fact
			s.Fact = &fact
		}
		out[i] = s
	}
	return out
}

func cloneCommands(in []Command) []Command {
	out := make([]Command, len(in))
	for i, c := range in {
		if c.Issue != nil {
			issue := *c.Issue
			c.Issue = &issue
		}
		c.Signers = append([]keys.PublicKey{}, c.Signers...)
		out[i] = c
	}
	return out
}
