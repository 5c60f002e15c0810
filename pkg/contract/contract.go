// Package contract holds the ledger rules governing AttestedFact issuance.
// Every signer of an issuance runs Validate over the full transaction before signing.
package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

// ProgramID names the contract that governs AttestedFact outputs
const ProgramID = "identity.v1.AttestedFactContract"

// ErrContractViolation is matched by every *ViolationError
var ErrContractViolation = errors.New("contract violation")

// ViolationError lists every rule a transaction broke
type ViolationError struct {
	Violations []string
}

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrContractViolation, strings.Join(e.Violations, "; "))
}

// Is makes errors.Is(err, ErrContractViolation) hold
func (e *ViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

// Validate checks the issuance rules over the full transaction:
//  1. no inputs are consumed
//  2. exactly one AttestedFact output is created
//  3. exactly one Issue command is present
//  4. the command's fact equals the output fact
//
// All rules are evaluated and reported together.
func Validate(tx *ledger.WireTransaction) error {
	if tx == nil {
		return &ViolationError{Violations: []string{"transaction is missing"}}
	}

	var violations []string
	if len(tx.Inputs) != 0 {
		violations = append(violations, fmt.Sprintf("no inputs should be consumed when issuing an AttestedFact, got %d", len(tx.Inputs)))
	}

	var outputs []ledger.TransactionState
	for _, out := range tx.Outputs {
		if out.Kind == ledger.StateAttestedFact && out.Fact != nil {
			outputs = append(outputs, out)
		}
	}
	if len(outputs) != 1 {
		violations = append(violations, fmt.Sprintf("there should be exactly one AttestedFact output, got %d", len(outputs)))
	}

	var issues []ledger.Command
	for _, cmd := range tx.Commands {
		if cmd.Kind == ledger.CommandIssue && cmd.Issue != nil {
			issues = append(issues, cmd)
		}
	}
	if len(issues) != 1 {
		violations = append(violations, fmt.Sprintf("there should be exactly one Issue command, got %d", len(issues)))
	}

	if len(outputs) == 1 && len(issues) == 1 && !issues[0].Issue.Fact.Equal(*outputs[0].Fact) {
		violations = append(violations, "the Issue command fact must equal the output fact")
	}

	if len(violations) > 0 {
		return &ViolationError{Violations: violations}
	}
	return nil
}
