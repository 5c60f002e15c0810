// Package merkle implements the binary digest tree that anchors transaction components
// to a transaction id, and the inclusion proofs used for selective disclosure.
//
// Leaves and inner nodes are hashed with distinct prefixes so an inner node can never be
// presented as a leaf. An odd node at the end of a level is promoted unchanged.
package merkle

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	leafPrefix byte = 0x00
	nodePrefix byte = 0x01
)

var (
	// ErrEmptyTree is returned when a tree has no leaves
	ErrEmptyTree = errors.New("merkle tree has no leaves")
	// ErrIndexOutOfRange is returned for proofs of leaves that do not exist
	ErrIndexOutOfRange = errors.New("leaf index out of range")
	// ErrMalformedPath is returned when a path has too many or too few siblings
	ErrMalformedPath = errors.New("malformed merkle path")
)

// LeafHash hashes a leaf payload
func LeafHash(parts ...[]byte) common.Hash {
	return crypto.Keccak256Hash(append([][]byte{{leafPrefix}}, parts...)...)
}

// NodeHash hashes two children into their parent
func NodeHash(left, right common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{nodePrefix}, left.Bytes(), right.Bytes())
}

// Root computes the root over leaves in order
func Root(leaves []common.Hash) (common.Hash, error) {
	if len(leaves) == 0 {
		return common.Hash{}, ErrEmptyTree
	}

	level := append([]common.Hash(nil), leaves...)
	for len(level) > 1 {
		level = nextLevel(level)
	}
	return level[0], nil
}

// Path returns the sibling hashes from the leaf at index up to the root.
// Levels where the node is promoted contribute no sibling.
func Path(leaves []common.Hash, index int) ([]common.Hash, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(leaves))
	}

	var path []common.Hash
	level := append([]common.Hash(nil), leaves...)
	for len(level) > 1 {
		switch {
		case index%2 == 1:
			path = append(path, level[index-1])
		case index+1 < len(level):
			path = append(path, level[index+1])
		}
		level = nextLevel(level)
		index /= 2
	}
	return path, nil
}

// RootFromPath recomputes the root from a leaf, its index, the total leaf count and its path.
// Sibling positions are derived from index and count, never taken from the prover.
func RootFromPath(leaf common.Hash, index, count int, path []common.Hash) (common.Hash, error) {
	if count <= 0 {
		return common.Hash{}, ErrEmptyTree
	}
	if index < 0 || index >= count {
		return common.Hash{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, count)
	}

	current := leaf
	next := 0
	for size := count; size > 1; size = (size + 1) / 2 {
		hasSibling := index%2 == 1 || index+1 < size
		if hasSibling {
			if next >= len(path) {
				return common.Hash{}, ErrMalformedPath
			}
			sibling := path[next]
			next++
			if index%2 == 1 {
				current = NodeHash(sibling, current)
			} else {
				current = NodeHash(current, sibling)
			}
		}
		index /= 2
	}
	if next != len(path) {
		return common.Hash{}, ErrMalformedPath
	}
	return current, nil
}

func nextLevel(level []common.Hash) []common.Hash {
	next := make([]common.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		if i+1 < len(level) {
			next = append(next, NodeHash(level[i], level[i+1]))
		} else {
			next = append(next, level[i])
		}
	}
	return next
}
