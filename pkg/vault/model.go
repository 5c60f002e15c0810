package vault

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/keys"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
	"github.com/chainsafe/identity-oracle/pkg/party"
)

// TransactionDao maps to the 'transactions' table. The signed transaction is kept as the
// exact JSON bytes it was encoded to, so opaque payloads keep their key order and the id
// can be recomputed on read. jsonb would normalise them.
type TransactionDao struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`
	ID            string    `bun:"id,pk,type:varchar(66)"`
	Payload       []byte    `bun:"payload,type:bytea,notnull"`
	FinalizedAt   time.Time `bun:"finalized_at,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toTransactionDao(stx *ledger.SignedTransaction, finalizedAt time.Time) (*TransactionDao, error) {
	payload, err := json.Marshal(stx)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return &TransactionDao{
		ID:          stx.ID().Hex(),
		Payload:     payload,
		FinalizedAt: finalizedAt.UTC(),
	}, nil
}

func fromTransactionDao(dao *TransactionDao) (*ledger.SignedTransaction, error) {
	var stx ledger.SignedTransaction
	if err := json.Unmarshal(dao.Payload, &stx); err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", dao.ID, err)
	}
	if err := stx.Tx.CheckFrozen(); err != nil {
		return nil, fmt.Errorf("stored transaction %s: %w", dao.ID, err)
	}
	return &stx, nil
}

// AttestedFactDao maps to the 'attested_facts' table
type AttestedFactDao struct {
	bun.BaseModel `bun:"table:attested_facts,alias:af"`
	UniqueID      uuid.UUID `bun:"unique_id,pk,type:uuid"`
	TransactionID string    `bun:"transaction_id,notnull,type:varchar(66)"`
	IdentityID    string    `bun:"identity_id,notnull,type:varchar(255)"`
	IdentityKind  string    `bun:"identity_kind,notnull,type:varchar(32)"`
	Token         string    `bun:"token,notnull,type:text"`
	IssuerName    string    `bun:"issuer_name,notnull,type:varchar(255)"`
	IssuerKey     string    `bun:"issuer_key,notnull,type:varchar(68)"`
	RequesterName string    `bun:"requester_name,notnull,type:varchar(255)"`
	RequesterKey  string    `bun:"requester_key,notnull,type:varchar(68)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toAttestedFactDao(txID string, f attestation.AttestedFact) *AttestedFactDao {
	return &AttestedFactDao{
		UniqueID:      f.UniqueID,
		TransactionID: txID,
		IdentityID:    f.Identity.ID,
		IdentityKind:  string(f.Identity.Kind),
		Token:         f.Token,
		IssuerName:    f.Issuer.Name,
		IssuerKey:     f.Issuer.Key.Hex(),
		RequesterName: f.Requester.Name,
		RequesterKey:  f.Requester.Key.Hex(),
	}
}

func fromAttestedFactDao(dao *AttestedFactDao) (*attestation.AttestedFact, error) {
	issuerKey, err := keys.ParsePublicKey(dao.IssuerKey)
	if err != nil {
		return nil, err
	}
	requesterKey, err := keys.ParsePublicKey(dao.RequesterKey)
	if err != nil {
		return nil, err
	}
	return &attestation.AttestedFact{
		Identity: attestation.IdentityDocument{
			ID:   dao.IdentityID,
			Kind: attestation.IdentityKind(dao.IdentityKind),
		},
		Token:     dao.Token,
		Issuer:    party.New(dao.IssuerName, issuerKey),
		Requester: party.New(dao.RequesterName, requesterKey),
		UniqueID:  dao.UniqueID,
	}, nil
}
