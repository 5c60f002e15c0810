package notary

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	apphttp "github.com/chainsafe/identity-oracle/pkg/app/http"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const (
	// FinalizePath accepts a fully signed transaction and returns a Receipt
	FinalizePath = "/v1/finalize"
	// TransactionPath serves a finalised transaction by id
	TransactionPath = "/v1/transactions/{id}"
	// FactPath serves a finalised fact by unique id
	FactPath = "/v1/facts/{uniqueID}"
)

// FinalizeResponse is the body returned by FinalizePath
type FinalizeResponse struct {
	Receipt Receipt `json:"receipt"`
}

// TransactionResponse is the body returned by TransactionPath
type TransactionResponse struct {
	Transaction ledger.SignedTransaction `json:"transaction"`
}

// FactResponse is the body returned by FactPath
type FactResponse struct {
	Fact attestation.AttestedFact `json:"fact"`
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the notary endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post(FinalizePath, apphttp.HandleError(h.finalize))
	r.Get(TransactionPath, apphttp.HandleError(h.transaction))
	r.Get(FactPath, apphttp.HandleError(h.fact))
}

func (h *HTTP) finalize(w http.ResponseWriter, r *http.Request) error {
	var stx ledger.SignedTransaction
	if err := apphttp.DecodeJSON(r, &stx); err != nil {
		return err
	}

	receipt, err := h.service.Finalize(r.Context(), &stx)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &FinalizeResponse{Receipt: *receipt})
	return nil
}

func (h *HTTP) transaction(w http.ResponseWriter, r *http.Request) error {
	raw := chi.URLParam(r, "id")
	if len(common.FromHex(raw)) != common.HashLength {
		return apperrors.BadRequestError(nil, "invalid transaction id")
	}

	stx, err := h.service.Transaction(r.Context(), common.HexToHash(raw))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &TransactionResponse{Transaction: *stx})
	return nil
}

func (h *HTTP) fact(w http.ResponseWriter, r *http.Request) error {
	uniqueID, err := uuid.Parse(chi.URLParam(r, "uniqueID"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid unique id")
	}

	fact, err := h.service.Fact(r.Context(), uniqueID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &FactResponse{Fact: *fact})
	return nil
}
