package ledger

import "errors"

var (
	// ErrNotFrozen is returned when a transaction's stored id does not match its components
	ErrNotFrozen = errors.New("transaction is not frozen")
	// ErrInvalidProof is returned when a filtered view does not reconstruct its claimed id
	ErrInvalidProof = errors.New("filtered view inclusion proof is invalid")
	// ErrEmptyView is returned when a filtered view reveals no components
	ErrEmptyView = errors.New("filtered view reveals no components")
	// ErrInvalidSignature is returned for signatures that do not verify
	ErrInvalidSignature = errors.New("invalid transaction signature")
	// ErrMissingSignatures is returned when a required signer has not signed
	ErrMissingSignatures = errors.New("transaction is missing required signatures")
	// ErrWrongTransaction is returned when a signature covers another transaction
	ErrWrongTransaction = errors.New("signature is over a different transaction")
)
