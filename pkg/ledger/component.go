package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger/merkle"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

// ComponentGroup is the closed set of transaction component kinds.
// Groups appear in the digest tree in declaration order.
type ComponentGroup uint8

const (
	GroupInputs ComponentGroup = iota
	GroupOutputs
	GroupCommands
	GroupNotary
)

func (g ComponentGroup) String() string {
	switch g {
	case GroupInputs:
		return "inputs"
	case GroupOutputs:
		return "outputs"
	case GroupCommands:
		return "commands"
	case GroupNotary:
		return "notary"
	default:
		return "unknown"
	}
}

func (g ComponentGroup) valid() bool {
	return g <= GroupNotary
}

// StateRef points at an output of an earlier transaction
type StateRef struct {
	TxID  common.Hash `json:"tx_id"`
	Index uint32      `json:"index"`
}

// StateKind tags the payload of a TransactionState
type StateKind string

const (
	StateAttestedFact StateKind = "attested_fact"
	StateOpaque       StateKind = "opaque"
)

// TransactionState is an output state governed by a contract
type TransactionState struct {
	Kind     StateKind                 `json:"kind"`
	Contract string                    `json:"contract"`
	Fact     *attestation.AttestedFact `json:"fact,omitempty"`
	Opaque   json.RawMessage           `json:"opaque,omitempty"`
}

// CommandKind tags the payload of a Command
type CommandKind string

const (
	CommandIssue  CommandKind = "issue"
	CommandOpaque CommandKind = "opaque"
)

// Command declares intent and the keys that must sign the transaction for it
type Command struct {
	Kind    CommandKind               `json:"kind"`
	Issue   *attestation.IssueCommand `json:"issue,omitempty"`
	Name    string                    `json:"name,omitempty"`
	Opaque  json.RawMessage           `json:"opaque,omitempty"`
	Signers []keys.PublicKey          `json:"signers"`
}

// NewIssueCommand creates an Issue command requiring the given signers
func NewIssueCommand(cmd attestation.IssueCommand, signers ...keys.PublicKey) Command {
	return Command{Kind: CommandIssue, Issue: &cmd, Signers: signers}
}

// NewOpaqueCommand creates a command of a foreign contract that this module does not interpret
func NewOpaqueCommand(name string, payload json.RawMessage, signers ...keys.PublicKey) Command {
	return Command{Kind: CommandOpaque, Name: name, Opaque: payload, Signers: signers}
}

// HasSigner reports whether key is a required signer of the command
func (c Command) HasSigner(key keys.PublicKey) bool {
	return keys.Contains(c.Signers, key)
}

// ComponentValue is one decoded transaction component. Exactly one of the
// payload pointers is set, selected by Group.
type ComponentValue struct {
	Group   ComponentGroup
	Index   uint32
	Input   *StateRef
	Output  *TransactionState
	Command *Command
	Notary  *party.Party
}

func (v ComponentValue) payload() (any, error) {
	switch v.Group {
	case GroupInputs:
		return v.Input, nil
	case GroupOutputs:
		return v.Output, nil
	case GroupCommands:
		return v.Command, nil
	case GroupNotary:
		return v.Notary, nil
	default:
		return nil, fmt.Errorf("unknown component group %d", v.Group)
	}
}

// encode returns the canonical bytes hashed into the component's leaf
func (v ComponentValue) encode() ([]byte, error) {
	p, err := v.payload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

func decodeComponent(group ComponentGroup, index uint32, data []byte) (ComponentValue, error) {
	v := ComponentValue{Group: group, Index: index}
	var err error
	switch group {
	case GroupInputs:
		v.Input = new(StateRef)
		err = json.Unmarshal(data, v.Input)
	case GroupOutputs:
		v.Output = new(TransactionState)
		err = json.Unmarshal(data, v.Output)
	case GroupCommands:
		v.Command = new(Command)
		err = json.Unmarshal(data, v.Command)
	case GroupNotary:
		v.Notary = new(party.Party)
		err = json.Unmarshal(data, v.Notary)
	default:
		return v, fmt.Errorf("unknown component group %d", group)
	}
	if err != nil {
		return v, fmt.Errorf("decode %s[%d]: %w", group, index, err)
	}
	return v, nil
}

// componentNonce binds a component position to the transaction's privacy salt.
// Without the salt a withheld component cannot be guessed from its leaf hash.
func componentNonce(salt []byte, group ComponentGroup, index uint32) common.Hash {
	return crypto.Keccak256Hash([]byte("nonce"), salt, []byte{byte(group)}, uint32Bytes(index))
}

func componentLeaf(nonce common.Hash, group ComponentGroup, index uint32, data []byte) common.Hash {
	return merkle.LeafHash(nonce.Bytes(), []byte{byte(group)}, uint32Bytes(index), data)
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
