package notary

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	apphttp "github.com/chainsafe/identity-oracle/pkg/app/http"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const defaultClientTimeout = 30 * time.Second

// Client calls a remote notary over HTTP. It implements Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the notary at baseURL. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Finalize submits stx for finality
func (c *Client) Finalize(ctx context.Context, stx *ledger.SignedTransaction) (*Receipt, error) {
	var resp FinalizeResponse
	if err := apphttp.PostJSON(ctx, c.httpClient, c.baseURL+FinalizePath, stx, &resp); err != nil {
		return nil, err
	}
	return &resp.Receipt, nil
}

// Transaction fetches a finalised transaction
func (c *Client) Transaction(ctx context.Context, id common.Hash) (*ledger.SignedTransaction, error) {
	var resp TransactionResponse
	url := c.baseURL + strings.Replace(TransactionPath, "{id}", id.Hex(), 1)
	if err := apphttp.GetJSON(ctx, c.httpClient, url, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}

// Fact fetches a finalised fact
func (c *Client) Fact(ctx context.Context, uniqueID uuid.UUID) (*attestation.AttestedFact, error) {
	var resp FactResponse
	url := c.baseURL + strings.Replace(FactPath, "{uniqueID}", uniqueID.String(), 1)
	if err := apphttp.GetJSON(ctx, c.httpClient, url, &resp); err != nil {
		return nil, err
	}
	return &resp.Fact, nil
}
