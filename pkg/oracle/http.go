package oracle

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/identity-oracle/pkg/app/http"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const (
	// SignPath accepts a filtered view and returns the oracle signature
	SignPath = "/v1/sign"
	// QueryPath accepts a draft fact and returns it with the attested token
	QueryPath = "/v1/query"
)

// SignResponse is the body returned by SignPath
type SignResponse struct {
	Signature ledger.Signature `json:"signature"`
}

// QueryRequest is the body accepted by QueryPath
type QueryRequest struct {
	Draft attestation.AttestedFact `json:"draft"`
}

// QueryResponse is the body returned by QueryPath
type QueryResponse struct {
	Fact attestation.AttestedFact `json:"fact"`
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the oracle endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post(SignPath, apphttp.HandleError(h.sign))
	r.Post(QueryPath, apphttp.HandleError(h.query))
}

func (h *HTTP) sign(w http.ResponseWriter, r *http.Request) error {
	var view ledger.FilteredView
	if err := apphttp.DecodeJSON(r, &view); err != nil {
		return err
	}

	sig, err := h.service.Sign(r.Context(), &view)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &SignResponse{Signature: *sig})
	return nil
}

func (h *HTTP) query(w http.ResponseWriter, r *http.Request) error {
	var req QueryRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	fact, err := h.service.Query(r.Context(), req.Draft)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &QueryResponse{Fact: *fact})
	return nil
}
