package oracle

import (
	"context"
	"time"

	"github.com/chainsafe/identity-oracle/internal/metrics"
	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

type metricsService struct {
	svc Service
}

// NewMetrics creates a decorator recording request counts and durations in prometheus
func NewMetrics(svc Service) Service {
	return &metricsService{svc: svc}
}

func (ms *metricsService) Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	defer observe("query", time.Now())
	fact, err := ms.svc.Query(ctx, draft)
	countOutcome("query", err)
	return fact, err
}

func (ms *metricsService) Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error) {
	defer observe("sign", time.Now())
	if view != nil {
		metrics.OracleRevealedComponents.Observe(float64(len(view.Components)))
	}
	sig, err := ms.svc.Sign(ctx, view)
	countOutcome("sign", err)
	return sig, err
}

func observe(method string, start time.Time) {
	metrics.OracleRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

func countOutcome(method string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = apperrors.CategoryOf(err).String()
	}
	metrics.OracleRequestsTotal.WithLabelValues(method, outcome).Inc()
}
