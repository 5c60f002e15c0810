package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint violation
const pgUniqueViolation = "23505"

// PGStore is a postgres implementation of Store
type PGStore struct {
	db *bun.DB
}

// NewPGStore creates a new postgres implementation of the vault store
func NewPGStore(db *bun.DB) *PGStore {
	return &PGStore{db: db}
}

// Record implements Store
func (s *PGStore) Record(ctx context.Context, stx *ledger.SignedTransaction, finalizedAt time.Time) error {
	txDao, err := toTransactionDao(stx, finalizedAt)
	if err != nil {
		return err
	}
	id := txDao.ID
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(txDao).Exec(ctx); err != nil {
			return err
		}
		for _, f := range factsOf(stx.Tx) {
			if _, err := tx.NewInsert().Model(toAttestedFactDao(id, f)).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// GetTransaction implements Store
func (s *PGStore) GetTransaction(ctx context.Context, id common.Hash) (*ledger.SignedTransaction, error) {
	dao := new(TransactionDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id.Hex()).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return fromTransactionDao(dao)
}

// GetFact implements Store
func (s *PGStore) GetFact(ctx context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error) {
	dao := new(AttestedFactDao)
	err := s.db.NewSelect().Model(dao).Where("unique_id = ?", uniqueID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attested fact: %w", err)
	}
	return fromAttestedFactDao(dao)
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == pgUniqueViolation
}
