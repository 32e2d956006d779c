package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dailynews/internal/config"
)

// NoNewsSummary is the fallback text for an empty facts set. The orchestrator
// returns it directly when nothing was fetched, without calling any backend.
const NoNewsSummary = "No news available."

// Summarizer turns a rendered headline digest into prose.
type Summarizer interface {
	Summarize(ctx context.Context, digest string) (string, error)
}

// ErrorKind classifies an unrecovered summarization failure.
type ErrorKind string

const (
	AuthError          ErrorKind = "auth_error"
	Timeout            ErrorKind = "timeout"
	BackendUnavailable ErrorKind = "backend_unavailable"
)

// SummarizationError is the typed failure a backend produces once its retry
// budget is exhausted.
type SummarizationError struct {
	Kind ErrorKind
	Err  error

	// transient marks failures the caller may retry (timeouts, 5xx).
	transient bool
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize: %s: %v", e.Kind, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// New selects the configured backend once at startup. Config validation has
// already guaranteed the remote backend has credentials.
func New(cfg *config.Config, client *http.Client, logger *zap.Logger) (Summarizer, error) {
	switch cfg.Summarizer.Backend {
	case config.BackendOffline:
		return NewOffline(), nil
	case config.BackendHuggingFace:
		return NewHuggingFace(
			client,
			cfg.Summarizer.APIToken,
			cfg.Summarizer.Model,
			cfg.Summarizer.BaseURL,
			time.Duration(cfg.Summarizer.TimeoutSeconds)*time.Second,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Summarizer.Backend)
	}
}

// ErrUnsupportedBackend is returned when an unknown backend is configured.
var ErrUnsupportedBackend = fmt.Errorf("unsupported summarizer backend")
