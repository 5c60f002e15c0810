package ledger

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chainsafe/identity-oracle/pkg/keys"
)

// Signature is a signer's signature over a transaction id
type Signature struct {
	SignerKey     keys.PublicKey `json:"signer_key"`
	TransactionID common.Hash    `json:"transaction_id"`
	Bytes         hexutil.Bytes  `json:"bytes"`
}

// Sign signs the transaction id with kp
func Sign(kp *keys.KeyPair, id common.Hash) (Signature, error) {
	sig, err := kp.SignHash(id)
	if err != nil {
		return Signature{}, err
	}
	return Signature{SignerKey: kp.PublicKey, TransactionID: id, Bytes: sig}, nil
}

// Verify checks the signature against its own signer key and transaction id
func (s Signature) Verify() error {
	if !keys.Verify(s.SignerKey, s.TransactionID, s.Bytes) {
		return fmt.Errorf("%w: signer %s", ErrInvalidSignature, s.SignerKey.Hex())
	}
	return nil
}

// SignedTransaction is a frozen transaction together with the signatures collected so far
type SignedTransaction struct {
	Tx         *WireTransaction `json:"tx"`
	Signatures []Signature      `json:"signatures"`
}

// SignInitial freezes-checks tx and attaches kp's signature
func SignInitial(tx *WireTransaction, kp *keys.KeyPair) (*SignedTransaction, error) {
	if err := tx.CheckFrozen(); err != nil {
		return nil, err
	}
	sig, err := Sign(kp, tx.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return &SignedTransaction{Tx: tx, Signatures: []Signature{sig}}, nil
}

// ID returns the transaction id
func (s *SignedTransaction) ID() common.Hash {
	return s.Tx.ID
}

// WithAdditionalSignature returns a copy of s carrying sig. The signature must be valid
// and over this transaction. A key that already signed is not added twice.
func (s *SignedTransaction) WithAdditionalSignature(sig Signature) (*SignedTransaction, error) {
	if sig.TransactionID != s.ID() {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongTransaction, sig.TransactionID.Hex(), s.ID().Hex())
	}
	if err := sig.Verify(); err != nil {
		return nil, err
	}

	out := &SignedTransaction{Tx: s.Tx, Signatures: append([]Signature{}, s.Signatures...)}
	if !out.hasSignatureFrom(sig.SignerKey) {
		out.Signatures = append(out.Signatures, sig)
	}
	return out, nil
}

func (s *SignedTransaction) hasSignatureFrom(key keys.PublicKey) bool {
	for _, sig := range s.Signatures {
		if sig.SignerKey.Equal(key) && sig.TransactionID == s.ID() && sig.Verify() == nil {
			return true
		}
	}
	return false
}

// MissingSigners returns the required signers without a valid signature
func (s *SignedTransaction) MissingSigners() []keys.PublicKey {
	var missing []keys.PublicKey
	for _, key := range s.Tx.RequiredSigners() {
		if !s.hasSignatureFrom(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// VerifyRequiredSignatures checks the transaction is frozen, every attached signature is
// valid, and every key of every command has signed.
func (s *SignedTransaction) VerifyRequiredSignatures() error {
	if err := s.Tx.CheckFrozen(); err != nil {
		return err
	}
	for _, sig := range s.Signatures {
		if sig.TransactionID != s.ID() {
			return ErrWrongTransaction
		}
		if err := sig.Verify(); err != nil {
			return err
		}
	}
	if missing := s.MissingSigners(); len(missing) > 0 {
		hexKeys := make([]string, len(missing))
		for i, k := range missing {
			hexKeys[i] = k.Hex()
		}
		return fmt.Errorf("%w: %s", ErrMissingSignatures, strings.Join(hexKeys, ", "))
	}
	return nil
}
