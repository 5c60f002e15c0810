package notary

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const serviceName = "NotaryService"

type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the notary Service
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

func (ls *logService) Finalize(ctx context.Context, stx *ledger.SignedTransaction) (receipt *Receipt, err error) {
	start := time.Now()
	fields := []zap.Field{zap.String("service", serviceName), zap.String("method", "Finalize")}
	if stx != nil && stx.Tx != nil {
		fields = append(fields, zap.String("tx_id", stx.ID().Hex()), zap.Int("signatures", len(stx.Signatures)))
	}

	defer func() {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
		if err != nil {
			ls.logger.Error("Finalize failed", append(fields, zap.Error(err))...)
			return
		}
		ls.logger.Info("Finalize completed", append(fields, zap.Time("finalized_at", receipt.FinalizedAt))...)
	}()

	return ls.svc.Finalize(ctx, stx)
}

func (ls *logService) Transaction(ctx context.Context, id common.Hash) (stx *ledger.SignedTransaction, err error) {
	defer func() {
		if err != nil {
			ls.logger.Debug("Transaction lookup failed",
				zap.String("service", serviceName),
				zap.String("tx_id", id.Hex()),
				zap.Error(err),
			)
		}
	}()
	return ls.svc.Transaction(ctx, id)
}

func (ls *logService) Fact(ctx context.Context, uniqueID uuid.UUID) (fact *attestation.AttestedFact, err error) {
	defer func() {
		if err != nil {
			ls.logger.Debug("Fact lookup failed",
				zap.String("service", serviceName),
				zap.String("unique_id", uniqueID.String()),
				zap.Error(err),
			)
		}
	}()
	return ls.svc.Fact(ctx, uniqueID)
}
