package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/identity-oracle/pkg/attestation"
)

// StatusPath is where the oracle exposes registry status lookups
const StatusPath = "/v1/registry/status"

// StatusResponse is the JSON body returned by the status endpoint.
// The subject is never disclosed.
type StatusResponse struct {
	ID        string                   `json:"id"`
	Kind      attestation.IdentityKind `json:"kind"`
	Valid     bool                     `json:"valid"`
	CheckedAt time.Time                `json:"checked_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves identity document status from a Registry
type Handler struct {
	registry Registry
	logger   *zap.Logger
}

// NewHandler creates a registry status handler.
func NewHandler(registry Registry, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// ServeHTTP handles GET requests with `id` and `kind` query parameters.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	doc := attestation.IdentityDocument{
		ID:   r.URL.Query().Get("id"),
		Kind: attestation.IdentityKind(strings.ToUpper(r.URL.Query().Get("kind"))),
	}
	if err := doc.Validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := h.registry.Lookup(r.Context(), doc)
	if errors.Is(err, ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "identity document not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to look up identity document", zap.String("kind", string(doc.Kind)), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "failed to look up identity document")
		return
	}

	h.writeJSON(w, http.StatusOK, StatusResponse{
		ID:        rec.Document.ID,
		Kind:      rec.Document.Kind,
		Valid:     rec.Valid,
		CheckedAt: rec.CheckedAt,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{Error: message})
}
