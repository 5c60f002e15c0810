// Package registry is the off-ledger identity registry the oracle consults before it
// attests a fact. Lookups can be served from a static table or through a redis cache.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
)

// ErrNotFound is returned when the registry has no record of a document
var ErrNotFound = errors.New("identity document not found in registry")

// Record is the registry's knowledge about one identity document
type Record struct {
	Document  attestation.IdentityDocument `json:"document"`
	Subject   string                       `json:"subject"`
	Valid     bool                         `json:"valid"`
	CheckedAt time.Time                    `json:"checked_at"`
}

// Registry looks up identity documents
type Registry interface {
	Lookup(ctx context.Context, doc attestation.IdentityDocument) (*Record, error)
}

// Static is an in-memory registry seeded from configuration. Safe for concurrent use.
type Static struct {
	mu      sync.RWMutex
	records map[attestation.IdentityDocument]Record
	now     func() time.Time
}

// NewStatic creates a registry holding records
func NewStatic(records ...Record) *Static {
	s := &Static{
		records: make(map[attestation.IdentityDocument]Record, len(records)),
		now:     time.Now,
	}
	for _, r := range records {
		s.records[r.Document] = r
	}
	return s
}

// Put adds or replaces a record
func (s *Static) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Document] = r
}

// Lookup implements Registry
func (s *Static) Lookup(_ context.Context, doc attestation.IdentityDocument) (*Record, error) {
	s.mu.RLock()
	r, ok := s.records[doc]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	r.CheckedAt = s.now()
	return &r, nil
}
