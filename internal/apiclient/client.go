// Package apiclient talks to a running dailynews HTTP server. The CLI uses
// it in --use-api mode instead of the in-process pipeline.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dailynews/internal/pipeline"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Summary calls GET /summary and decodes the wire result. A 400 from the
// server is surfaced as a ValidationError so CLI behavior matches the
// in-process path.
func (c *Client) Summary(ctx context.Context, req pipeline.SummaryRequest) (*pipeline.SummaryResult, error) {
	params := url.Values{}
	params.Set("topics", strings.Join(req.Topics, ","))
	params.Set("hours", strconv.Itoa(req.Hours))
	if req.Region != "" {
		params.Set("region", req.Region)
	}
	if req.Language != "" {
		params.Set("language", req.Language)
	}
	if req.MaxRecords > 0 {
		params.Set("maxrecords", strconv.Itoa(req.MaxRecords))
	}

	reqURL := fmt.Sprintf("%s/summary?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to create request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		return nil, &pipeline.ValidationError{Reason: errorMessage(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apiclient: server returned %d: %s", resp.StatusCode, errorMessage(body))
	}

	var result pipeline.SummaryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("apiclient: failed to parse response: %w", err)
	}
	return &result, nil
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
