package notary

import (
	"context"

	"github.com/chainsafe/identity-oracle/internal/metrics"
	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

// metricsService counts finalisations; lookups pass through
type metricsService struct {
	Service
}

// NewMetrics creates a decorator counting finalisation outcomes
func NewMetrics(svc Service) Service {
	return &metricsService{Service: svc}
}

func (ms *metricsService) Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*Receipt, error) {
	receipt, err := ms.Service.Finalize(ctx, stx)
	outcome := "ok"
	if err != nil {
		outcome = apperrors.CategoryOf(err).String()
	}
	metrics.NotaryFinalizationsTotal.WithLabelValues(outcome).Inc()
	return receipt, err
}
