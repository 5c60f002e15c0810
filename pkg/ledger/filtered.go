package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chainsafe/identity-oracle/pkg/ledger/merkle"
)

// Predicate selects the components a filtered view discloses
type Predicate func(ComponentValue) bool

// RevealedComponent is a disclosed component with everything needed to anchor it to the
// transaction id: its nonce, canonical bytes, leaf position and sibling path.
type RevealedComponent struct {
	Group     ComponentGroup `json:"group"`
	Index     uint32         `json:"index"`
	Nonce     common.Hash    `json:"nonce"`
	Data      hexutil.Bytes  `json:"data"`
	LeafIndex uint32         `json:"leaf_index"`
	Path      []common.Hash  `json:"path"`
}

// FilteredView is a selectively disclosed projection of a transaction. It is immutable
// once built and never persisted.
type FilteredView struct {
	ID         common.Hash         `json:"id"`
	LeafCount  uint32              `json:"leaf_count"`
	Components []RevealedComponent `json:"components"`
}

// BuildFilteredView discloses the components of stx for which pred returns true.
// stx must be frozen: its stored id has to match its components.
func BuildFilteredView(stx *SignedTransaction, pred Predicate) (*FilteredView, error) {
	if stx == nil || stx.Tx == nil {
		return nil, ErrNotFrozen
	}
	if err := stx.Tx.CheckFrozen(); err != nil {
		return nil, err
	}

	components, err := stx.Tx.components()
	if err != nil {
		return nil, err
	}
	leaves := leavesOf(components)

	view := &FilteredView{
		ID:        stx.Tx.ID,
		LeafCount: uint32(len(leaves)),
	}
	for i, c := range components {
		if !pred(c.value) {
			continue
		}
		path, err := merkle.Path(leaves, i)
		if err != nil {
			return nil, fmt.Errorf("failed to build inclusion proof: %w", err)
		}
		view.Components = append(view.Components, RevealedComponent{
			Group:     c.value.Group,
			Index:     c.value.Index,
			Nonce:     c.nonce,
			Data:      append([]byte{}, c.data...),
			LeafIndex: uint32(i),
			Path:      path,
		})
	}
	return view, nil
}

// VerifiedView is a filtered view whose inclusion proofs have been checked.
// It can only be obtained from FilteredView.Verify.
type VerifiedView struct {
	id     common.Hash
	values []ComponentValue
}

// Verify recomputes the root from every revealed component and its path and compares it
// with the claimed id. It must succeed before any revealed component is inspected.
func (v *FilteredView) Verify() (*VerifiedView, error) {
	if v == nil || len(v.Components) == 0 {
		return nil, ErrEmptyView
	}
	if v.LeafCount == 0 || int(v.LeafCount) < len(v.Components) {
		return nil, fmt.Errorf("%w: leaf count %d", ErrInvalidProof, v.LeafCount)
	}

	seen := make(map[uint32]struct{}, len(v.Components))
	values := make([]ComponentValue, 0, len(v.Components))
	for _, c := range v.Components {
		if !c.Group.valid() {
			return nil, fmt.Errorf("%w: unknown component group %d", ErrInvalidProof, c.Group)
		}
		if _, dup := seen[c.LeafIndex]; dup {
			return nil, fmt.Errorf("%w: leaf %d revealed twice", ErrInvalidProof, c.LeafIndex)
		}
		seen[c.LeafIndex] = struct{}{}

		leaf := componentLeaf(c.Nonce, c.Group, c.Index, c.Data)
		root, err := merkle.RootFromPath(leaf, int(c.LeafIndex), int(v.LeafCount), c.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidProof, c.Group, c.Index, err)
		}
		if root != v.ID {
			return nil, fmt.Errorf("%w: %s[%d] does not reconstruct %s", ErrInvalidProof, c.Group, c.Index, v.ID.Hex())
		}

		value, err := decodeComponent(c.Group, c.Index, c.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidProof, err)
		}
		values = append(values, value)
	}

	return &VerifiedView{id: v.ID, values: values}, nil
}

// ID returns the transaction id the view is anchored to
func (v *VerifiedView) ID() common.Hash {
	return v.id
}

// Values returns the revealed components
func (v *VerifiedView) Values() []ComponentValue {
	return append([]ComponentValue{}, v.values...)
}

// Commands returns the revealed commands
func (v *VerifiedView) Commands() []Command {
	var out []Command
	for _, value := range v.values {
		if value.Group == GroupCommands && value.Command != nil {
			out = append(out, *value.Command)
		}
	}
	return out
}
