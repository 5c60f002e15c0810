// Package oracle implements the attestation decision procedure of the identity oracle.
//
// The oracle never sees the full transaction. It receives a filtered view, checks that
// the view reconstructs the claimed transaction id, checks that it is a required signer
// of an Issue command in the view, optionally checks the attested facts against an
// off-ledger source, and signs the transaction id.
package oracle

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

var (
	// ErrNotRequiredSigner is returned when no revealed Issue command lists the oracle key,
	// or when the view reveals components other than such commands
	ErrNotRequiredSigner = errors.New("oracle is not a required signer of a revealed issue command")
	// ErrFactRejected is returned when the fact checker refuses an attested fact
	ErrFactRejected = errors.New("attested fact rejected")
)

// Service is the oracle's request surface
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	// Query resolves the token for a draft fact from the off-ledger source
	Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error)
	// Sign verifies a filtered view and signs the transaction id it is anchored to
	Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error)
}

// FactSource completes a draft fact with the attested token
//
//go:generate mockery --name FactSource --output mocks --outpkg mocks --filename mock_fact_source.go --with-expecter
type FactSource interface {
	Resolve(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error)
}

// FactChecker validates an attested fact before the oracle signs it
type FactChecker interface {
	Check(ctx context.Context, fact attestation.AttestedFact) error
}

// CheckerFunc adapts a function to FactChecker
type CheckerFunc func(ctx context.Context, fact attestation.AttestedFact) error

// Check implements FactChecker
func (f CheckerFunc) Check(ctx context.Context, fact attestation.AttestedFact) error {
	return f(ctx, fact)
}

// AcceptAll signs every fact shown in a valid view
var AcceptAll FactChecker = CheckerFunc(func(context.Context, attestation.AttestedFact) error { return nil })

// Decision is the state of a signing request
type Decision int

const (
	// DecisionReceived means the view verified and awaits a decision
	DecisionReceived Decision = iota
	// DecisionSigned means the oracle signs
	DecisionSigned
	// DecisionRejected means the oracle is not a required signer
	DecisionRejected
)

func (d Decision) String() string {
	switch d {
	case DecisionReceived:
		return "received"
	case DecisionSigned:
		return "signed"
	case DecisionRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// DisclosurePredicate selects the components the oracle must see: Issue commands
// listing key as a required signer. Everything else stays hidden.
func DisclosurePredicate(key keys.PublicKey) ledger.Predicate {
	return func(v ledger.ComponentValue) bool {
		switch v.Group {
		case ledger.GroupCommands:
			return v.Command != nil && isOracleIssue(*v.Command, key)
		case ledger.GroupInputs, ledger.GroupOutputs, ledger.GroupNotary:
			return false
		default:
			return false
		}
	}
}

func isOracleIssue(cmd ledger.Command, key keys.PublicKey) bool {
	return cmd.Kind == ledger.CommandIssue && cmd.Issue != nil && cmd.HasSigner(key)
}

// Decide returns the Issue commands of a verified view that key must sign, and
// DecisionSigned only if every revealed component is such a command. A view disclosing
// anything the oracle is not asked to sign is rejected.
func Decide(view *ledger.VerifiedView, key keys.PublicKey) ([]attestation.IssueCommand, Decision) {
	pred := DisclosurePredicate(key)
	values := view.Values()

	issues := make([]attestation.IssueCommand, 0, len(values))
	for _, v := range values {
		if !pred(v) {
			return nil, DecisionRejected
		}
		issues = append(issues, *v.Command.Issue)
	}
	if len(issues) == 0 {
		return nil, DecisionRejected
	}
	return issues, DecisionSigned
}

type oracleService struct {
	key     *keys.KeyPair
	source  FactSource
	checker FactChecker
}

// NewService creates the oracle service. It only holds read-only key material and is
// safe for concurrent use. A nil checker accepts every fact.
func NewService(key *keys.KeyPair, source FactSource, checker FactChecker) Service {
	if checker == nil {
		checker = AcceptAll
	}
	return &oracleService{
		key:     key,
		source:  source,
		checker: checker,
	}
}

func (s *oracleService) Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	if err := draft.ValidateDraft(); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid draft fact: "+err.Error())
	}
	if s.source == nil {
		return nil, apperrors.NotSupportedError(nil, "oracle has no fact source")
	}

	fact, err := s.source.Resolve(ctx, draft)
	if err != nil {
		return nil, err
	}
	if fact == nil {
		return nil, apperrors.GeneralError(fmt.Errorf("fact source returned no fact for %s", draft.UniqueID))
	}
	if fact.Identity != draft.Identity || fact.UniqueID != draft.UniqueID {
		return nil, apperrors.GeneralError(fmt.Errorf("fact source changed the draft identity"))
	}
	return fact, nil
}

func (s *oracleService) Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error) {
	verified, err := view.Verify()
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid proof")
	}

	issues, decision := Decide(verified, s.key.PublicKey)
	if decision != DecisionSigned {
		return nil, apperrors.UnAuthorizedError(ErrNotRequiredSigner, "oracle is not a required signer")
	}

	for _, issue := range issues {
		if err := s.checker.Check(ctx, issue.Fact); err != nil {
			return nil, apperrors.ForbiddenError(fmt.Errorf("%w: %w", ErrFactRejected, err), "attested fact rejected")
		}
	}

	sig, err := ledger.Sign(s.key, verified.ID())
	if err != nil {
		return nil, apperrors.GeneralError(err)
	}
	return &sig, nil
}
