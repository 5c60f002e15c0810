package flow

import (
	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/internal/metrics"
)

// Step is a stage of the token request flow, reached in declaration order
type Step int

const (
	StepSetUp Step = iota
	StepQueryingOracle
	StepBuildingTx
	StepVerifyingTx
	StepSigning
	StepOracleSigning
	StepFinalising
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepSetUp:
		return "SET_UP"
	case StepQueryingOracle:
		return "QUERYING_ORACLE"
	case StepBuildingTx:
		return "BUILDING_TX"
	case StepVerifyingTx:
		return "VERIFYING_TX"
	case StepSigning:
		return "SIGNING"
	case StepOracleSigning:
		return "ORACLE_SIGNING"
	case StepFinalising:
		return "FINALISING"
	case StepDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// Observer is notified as the flow moves through its steps. It has no say in control flow.
type Observer interface {
	OnStep(step Step)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Step)

// OnStep implements Observer
func (f ObserverFunc) OnStep(step Step) { f(step) }

type logObserver struct {
	logger *zap.Logger
}

// NewLogObserver logs and counts every step reached
func NewLogObserver(logger *zap.Logger) Observer {
	return &logObserver{logger: logger}
}

func (o *logObserver) OnStep(step Step) {
	metrics.FlowStepsTotal.WithLabelValues(step.String()).Inc()
	o.logger.Info("Flow step", zap.String("step", step.String()))
}
