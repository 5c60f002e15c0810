package oracle

import (
	"context"
	"net/http"
	"strings"
	"time"

	apphttp "github.com/chainsafe/identity-oracle/pkg/app/http"
	"github.com/chainsafe/identity-oracle/pkg/attestation"
	"github.com/chainsafe/identity-oracle/pkg/ledger"
)

const defaultClientTimeout = 30 * time.Second

// Client calls a remote oracle over HTTP. It implements Service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) { cl.httpClient = &http.Client{Timeout: d} }
}

// NewClient creates a client for the oracle at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultClientTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query asks the oracle to complete the draft with its attested token
func (c *Client) Query(ctx context.Context, draft attestation.AttestedFact) (*attestation.AttestedFact, error) {
	var resp QueryResponse
	if err := apphttp.PostJSON(ctx, c.httpClient, c.baseURL+QueryPath, &QueryRequest{Draft: draft}, &resp); err != nil {
		return nil, err
	}
	return &resp.Fact, nil
}

// Sign sends a filtered view to the oracle and returns its signature
func (c *Client) Sign(ctx context.Context, view *ledger.FilteredView) (*ledger.Signature, error) {
	var resp SignResponse
	if err := apphttp.PostJSON(ctx, c.httpClient, c.baseURL+SignPath, view, &resp); err != nil {
		return nil, err
	}
	return &resp.Signature, nil
}
