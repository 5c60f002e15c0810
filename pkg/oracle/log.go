package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const serviceName = "OracleService"

const signatureDisplaySize = 16

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the oracle Service.
// It logs method entry/exit, duration, errors and redacted signatures.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Query wraps the service method with logging
func (ls *logService) Query(ctx context.Context, draft attestation.AttestedFact) (fact *attestation.AttestedFact, err error) {
	start := time.Now()

	ls.logger.Info("Query started",
		zap.String("service", serviceName),
		zap.String("method", "Query"),
		zap.String("identity_kind", string(draft.Identity.Kind)),
		zap.String("unique_id", draft.UniqueID.String()),
	)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Query failed",
				zap.String("service", serviceName),
				zap.String("method", "Query"),
				zap.String("unique_id", draft.UniqueID.String()),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
			return
		}
		ls.logger.Info("Query completed",
			zap.String("service", serviceName),
			zap.String("method", "Query"),
			zap.String("unique_id", fact.UniqueID.String()),
			zap.Duration("duration", duration),
		)
	}()

	return ls.svc.Query(ctx, draft)
}

// Sign wraps the service method with logging
func (ls *logService) Sign(ctx context.Context, view *ledger.FilteredView) (sig *ledger.Signature, err error) {
	start := time.Now()

	fields := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", "Sign"),
	}
	if view != nil {
		fields = append(fields,
			zap.String("tx_id", view.ID.Hex()),
			zap.Int("revealed", len(view.Components)),
		)
	}
	ls.logger.Info("Sign started", fields...)

	defer func() {
		duration := time.Since(start)
		if err != nil {
			ls.logger.Error("Sign failed", append(fields, zap.Duration("duration", duration), zap.Error(err))...)
			return
		}
		ls.logger.Info("Sign completed", append(fields,
			zap.String("signature", redactSignature(sig.Bytes.String())),
			zap.Duration("duration", duration),
		)...)
	}()

	return ls.svc.Sign(ctx, view)
}

func redactSignature(sig string) string {
	if len(sig) <= signatureDisplaySize {
		return sig
	}
	return sig[:signatureDisplaySize] + "..."
}
