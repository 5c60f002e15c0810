package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/chainsafe/identity-oracle/pkg/app/errors"
)

// PostJSON sends req as JSON to url and decodes a 2xx response into resp.
// Transport failures are reported as dependency or timeout errors; error responses
// keep the category of their status code. Nothing is retried.
func PostJSON(ctx context.Context, client *http.Client, url string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return do(ctx, client, http.MethodPost, url, bytes.NewReader(body), resp)
}

// GetJSON fetches url and decodes a 2xx response into resp, with the same error
// mapping as PostJSON.
func GetJSON(ctx context.Context, client *http.Client, url string, resp any) error {
	return do(ctx, client, http.MethodGet, url, nil, resp)
}

func do(ctx context.Context, client *http.Client, method, url string, body io.Reader, resp any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.TimeoutError(err, "request to "+url+" timed out")
		}
		return apperrors.DependencyError(err, "request to "+url+" failed")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return ReadError(httpResp)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return apperrors.DependencyError(err, "invalid response from "+url)
	}
	return nil
}
