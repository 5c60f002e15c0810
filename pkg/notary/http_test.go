package notary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
	"github.com/chainsafe/identity-oracle/pkg/vault"
)

func newTestServer(t *testing.T, svc Service) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewMetrics(NewLog(svc, zap.NewNop())), zap.NewNop())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFinalizeAndLookup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	srv := newTestServer(t, NewService(f.notary, vault.NewMemoryStore()))
	client := NewClient(srv.URL, 0)
	stx := f.complete(t)

	receipt, err := client.Finalize(ctx, stx)
	require.NoError(t, err)
	assert.Equal(t, stx.ID(), receipt.TransactionID)
	require.NoError(t, receipt.Signature.Verify())

	recorded, err := client.Transaction(ctx, stx.ID())
	require.NoError(t, err)
	require.NoError(t, recorded.VerifyRequiredSignatures())
	assert.Len(t, recorded.Signatures, 3)

	fact, err := client.Fact(ctx, f.fact.UniqueID)
	require.NoError(t, err)
	assert.True(t, f.fact.Equal(*fact))

	_, err = client.Finalize(ctx, stx)
	assert.Equal(t, apperrors.CategoryDataConflict, apperrors.CategoryOf(err))
}

func TestHTTPErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	srv := newTestServer(t, NewService(f.notary, vault.NewMemoryStore()))
	client := NewClient(srv.URL, 0)

	_, err := client.Finalize(ctx, f.signed(t, f.builder(f.notary.PublicKey), f.issuer))
	assert.Equal(t, apperrors.CategoryDataError, apperrors.CategoryOf(err))

	_, err = client.Fact(ctx, uuid.New())
	assert.Equal(t, apperrors.CategoryResourceNotFound, apperrors.CategoryOf(err))

	resp, err := http.Get(srv.URL + "/v1/transactions/not-a-hash")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
