// Package party models the named, key-holding participants of the ledger network and
// resolves a legal name to its cryptographic identity.
package party

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chainsafe/identity-oracle/pkg/keys"
)

// ErrNotFound is returned when a name does not resolve to a known party
var ErrNotFound = errors.New("party not found")

// Party is a well-known network participant identified by legal name and owning key.
type Party struct {
	Name string         `json:"name"`
	Key  keys.PublicKey `json:"key"`
}

// New creates a Party
func New(name string, key keys.PublicKey) Party {
	return Party{Name: name, Key: key}
}

// Equal compares two parties by name and owning key
func (p Party) Equal(other Party) bool {
	return p.Name == other.Name && p.Key.Equal(other.Key)
}

// IsZero reports whether the party is unset
func (p Party) IsZero() bool {
	return p.Name == "" && len(p.Key) == 0
}

func (p Party) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Key.Hex())
}

// Resolver resolves a party's legal name to its identity.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Party, error)
}

// Directory is a static network map keyed by legal name. Safe for concurrent use.
type Directory struct {
	mu      sync.RWMutex
	parties map[string]Party
}

// NewDirectory creates a Directory holding the given parties
func NewDirectory(parties ...Party) *Directory {
	d := &Directory{parties: make(map[string]Party, len(parties))}
	for _, p := range parties {
		d.parties[p.Name] = p
	}
	return d
}

// Add registers or replaces a party
func (d *Directory) Add(p Party) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parties[p.Name] = p
}

// Resolve returns the party registered under name
func (d *Directory) Resolve(_ context.Context, name string) (Party, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.parties[name]
	if !ok {
		return Party{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, nil
}
