// Package token mints and checks the attestation tokens the oracle embeds in an
// AttestedFact. A token is an HS256 JWT naming the identity document it was issued for
// and bound to the fact's unique id.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/registry"
)

var (
	// ErrInvalidToken is returned when a token does not match the fact it is embedded in
	ErrInvalidToken = errors.New("invalid attestation token")
	// ErrRevokedIdentity is returned for documents the registry no longer considers valid
	ErrRevokedIdentity = errors.New("identity document is not valid")
)

// Claims are the claims of an attestation token. The subject is the document id and
// the token id is the fact's unique id.
type Claims struct {
	Kind attestation.IdentityKind `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer mints attestation tokens
type Issuer struct {
	secret []byte
	name   string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer signing with secret under the oracle's name
func NewIssuer(secret []byte, name string, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, name: name, ttl: ttl, now: time.Now}
}

// Issue mints a token for doc bound to uniqueID
func (i *Issuer) Issue(doc attestation.IdentityDocument, uniqueID uuid.UUID) (string, error) {
	now := i.now()
	claims := Claims{
		Kind: doc.Kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.name,
			Subject:   doc.ID,
			ID:        uniqueID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Checker validates the token embedded in a fact. It implements oracle.FactChecker.
type Checker struct {
	secret []byte
	name   string
	now    func() time.Time
}

// NewChecker creates a checker for tokens minted by the issuer called name
func NewChecker(secret []byte, name string) *Checker {
	return &Checker{secret: secret, name: name, now: time.Now}
}

// Check verifies signature, issuer, expiry, subject, kind and unique id of fact.Token
func (c *Checker) Check(_ context.Context, fact attestation.AttestedFact) error {
	var claims Claims
	_, err := jwt.ParseWithClaims(fact.Token, &claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.name),
		jwt.WithSubject(fact.Identity.ID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Kind != fact.Identity.Kind {
		return fmt.Errorf("%w: issued for %s, fact is %s", ErrInvalidToken, claims.Kind, fact.Identity.Kind)
	}
	if claims.ID != fact.UniqueID.String() {
		return fmt.Errorf("%w: issued for another fact", ErrInvalidToken)
	}
	return nil
}

// Source completes draft facts with a token for documents the registry knows.
// It implements oracle.FactSource.
type Source struct {
	registry registry.Registry
	issuer   *Issuer
}

// NewSource creates a fact source
func NewSource(reg registry.Registry, issuer *Issuer) *Source {
	return &Source{registry: reg, issuer: issuer}
}

// Resolve looks the draft's document up and returns the draft carrying a fresh token
func (s *Source) Resolve(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	rec, err := s.registry.Lookup(ctx, draft.Identity)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, apperrors.ResourceNotFoundError(err, "identity document not found")
	}
	if err != nil {
		return nil, apperrors.DependencyError(err, "identity registry unavailable")
	}
	if !rec.Valid {
		return nil, apperrors.ForbiddenError(ErrRevokedIdentity, "identity document is not valid")
	}

	tok, err := s.issuer.Issue(draft.Identity, draft.UniqueID)
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	fact := draft
	fact.Token = tok
	return &fact, nil
}
