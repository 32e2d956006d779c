package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"dailynews/internal/metrics"
	"dailynews/internal/retry"
)

const (
	defaultHFBaseURL = "https://api-inference.huggingface.co/models"
	defaultHFTimeout = 30 * time.Second

	// instruction is the fixed template the digest is embedded in.
	instruction = "Summarize the following news headlines concisely:\n\n"
)

// HuggingFace calls the hosted Inference API summarization endpoint. Each
// Summarize call is bounded by a timeout and retried at most once on
// transient failure (timeout or 5xx). Authentication failures are terminal.
type HuggingFace struct {
	client    *http.Client
	token     string
	model     string
	baseURL   string
	timeout   time.Duration
	retryConf retry.Config
	logger    *zap.Logger
}

func NewHuggingFace(client *http.Client, token, model, baseURL string, timeout time.Duration, logger *zap.Logger) *HuggingFace {
	if client == nil {
		client = &http.Client{}
	}
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}
	if timeout <= 0 {
		timeout = defaultHFTimeout
	}
	return &HuggingFace{
		client:    client,
		token:     token,
		model:     model,
		baseURL:   baseURL,
		timeout:   timeout,
		retryConf: retry.DefaultConfig(),
		logger:    logger,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type hfResult struct {
	SummaryText string `json:"summary_text"`
}

type hfErrorBody struct {
	Error string `json:"error"`
}

func (s *HuggingFace) Summarize(ctx context.Context, digest string) (string, error) {
	var summary string

	err := retry.WithBackoff(ctx, s.retryConf, func(ctx context.Context) error {
		out, err := s.call(ctx, digest)
		if err != nil {
			return err
		}
		summary = out
		return nil
	}, func(err error) bool {
		var se *SummarizationError
		return errors.As(err, &se) && se.transient
	})

	if err != nil {
		metrics.SummarizeRequests.WithLabelValues("huggingface", "error").Inc()
		var se *SummarizationError
		if errors.As(err, &se) {
			return "", se
		}
		return "", err
	}

	metrics.SummarizeRequests.WithLabelValues("huggingface", "ok").Inc()
	return summary, nil
}

func (s *HuggingFace) call(ctx context.Context, digest string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reqBody := hfRequest{
		Inputs: instruction + digest,
		Parameters: hfParameters{
			MaxLength: 100,
			DoSample:  false,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", &SummarizationError{Kind: BackendUnavailable, Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := s.baseURL + "/" + s.model
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &SummarizationError{Kind: BackendUnavailable, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", &SummarizationError{Kind: Timeout, Err: err, transient: true}
		}
		return "", &SummarizationError{Kind: BackendUnavailable, Err: err, transient: true}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SummarizationError{Kind: BackendUnavailable, Err: fmt.Errorf("read response: %w", err), transient: true}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &SummarizationError{Kind: AuthError, Err: fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(body))}
	case resp.StatusCode != http.StatusOK:
		return "", &SummarizationError{
			Kind:      BackendUnavailable,
			Err:       fmt.Errorf("status %d: %s", resp.StatusCode, apiErrorMessage(body)),
			transient: retry.HTTPStatusRetryable(resp.StatusCode),
		}
	}

	var results []hfResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", &SummarizationError{Kind: BackendUnavailable, Err: fmt.Errorf("parse response: %w", err)}
	}
	if len(results) == 0 || strings.TrimSpace(results[0].SummaryText) == "" {
		return "", &SummarizationError{Kind: BackendUnavailable, Err: fmt.Errorf("empty summary in response")}
	}

	return strings.TrimSpace(results[0].SummaryText), nil
}

func apiErrorMessage(body []byte) string {
	var eb hfErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
