package summarizer

import (
	"context"
	"strings"

	"dailynews/internal/digest"
	"dailynews/internal/metrics"
)

// Offline is the deterministic stub backend: no network call, output fully
// determined by the digest. It keeps the pipeline exercisable without
// external dependencies.
type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (o *Offline) Summarize(_ context.Context, text string) (string, error) {
	metrics.SummarizeRequests.WithLabelValues("offline", "ok").Inc()

	if strings.TrimSpace(text) == "" || text == digest.EmptyPlaceholder {
		return NoNewsSummary, nil
	}

	titles := digest.Titles(text)
	if len(titles) == 0 {
		return NoNewsSummary, nil
	}
	return strings.Join(titles, "; "), nil
}
