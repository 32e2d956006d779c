package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"dailynews/internal/digest"
	"dailynews/internal/fetcher"
	"dailynews/internal/metrics"
	"dailynews/internal/summarizer"
)

// MaxHours bounds the lookback window a request may ask for.
const MaxHours = 72

// SummaryRequest is a caller's ask: which topics, how far back, and optional
// region/language filters shared by every topic in the batch.
type SummaryRequest struct {
	Topics     []string
	Hours      int
	Region     string
	Language   string
	MaxRecords int // per-topic cap, 0 means the source default
}

// SummaryResult is the one canonical value every surface consumes. The JSON
// tags are the wire format served by the HTTP API.
type SummaryResult struct {
	Topics       []string           `json:"topics"`
	Hours        int                `json:"hours"`
	Region       string             `json:"region"`
	Language     string             `json:"language"`
	FetchedCount int                `json:"fetched_count"`
	Summary      string             `json:"summary"`
	Headlines    []fetcher.Headline `json:"headlines"`
}

// ValidationError rejects a malformed request before any fetch happens.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Orchestrator sequences fetch, merge, digest and summarize into one call.
// It is the single entry point shared by the CLI, the HTTP handler and the
// email dispatch path.
type Orchestrator struct {
	fetcher      *fetcher.TopicFetcher
	summarizer   summarizer.Summarizer
	maxChars     int
	maxHeadlines int
	logger       *zap.Logger
}

func New(f *fetcher.TopicFetcher, s summarizer.Summarizer, maxChars, maxHeadlines int, logger *zap.Logger) *Orchestrator {
	if maxChars <= 0 {
		maxChars = 1000
	}
	if maxHeadlines <= 0 {
		maxHeadlines = 10
	}
	return &Orchestrator{
		fetcher:      f,
		summarizer:   s,
		maxChars:     maxChars,
		maxHeadlines: maxHeadlines,
		logger:       logger,
	}
}

// ProduceSummary validates the request, fans out the per-topic fetches,
// merges and summarizes. Partial topic failure is not an error; a cancelled
// context or an unrecovered summarizer failure is.
func (o *Orchestrator) ProduceSummary(ctx context.Context, req SummaryRequest) (*SummaryResult, error) {
	topics, err := normalizeTopics(req.Topics)
	if err != nil {
		return nil, err
	}
	if req.Hours <= 0 {
		return nil, &ValidationError{Reason: "hours must be a positive integer"}
	}
	if req.Hours > MaxHours {
		return nil, &ValidationError{Reason: "hours must be at most 72"}
	}

	queries := make([]fetcher.TopicQuery, len(topics))
	for i, topic := range topics {
		queries[i] = fetcher.TopicQuery{
			Topic:      topic,
			Hours:      req.Hours,
			Region:     req.Region,
			Language:   req.Language,
			MaxRecords: req.MaxRecords,
		}
	}

	outcomes := o.fetcher.FetchAll(ctx, queries)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	headlines, fetched := digest.Merge(outcomes)
	metrics.HeadlinesFetched.Add(float64(fetched))

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
		}
	}
	o.logger.Info("fetch complete",
		zap.Int("topics", len(topics)),
		zap.Int("failed_topics", failed),
		zap.Int("fetched", fetched))

	var summary string
	if fetched == 0 {
		// Empty facts set: never spend the model budget on it.
		summary = summarizer.NoNewsSummary
	} else {
		text := digest.Build(headlines, o.maxChars)
		summary, err = o.summarizer.Summarize(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if strings.TrimSpace(summary) == "" {
			summary = summarizer.NoNewsSummary
		}
	}

	return &SummaryResult{
		Topics:       topics,
		Hours:        req.Hours,
		Region:       req.Region,
		Language:     req.Language,
		FetchedCount: fetched,
		Summary:      summary,
		Headlines:    visibleHeadlines(headlines, o.maxHeadlines),
	}, nil
}

// normalizeTopics trims whitespace, drops blanks and collapses duplicates
// while preserving first-seen order.
func normalizeTopics(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	var topics []string
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		return nil, &ValidationError{Reason: "at least one topic required"}
	}
	return topics, nil
}

// visibleHeadlines orders the deduplicated set most-recent-first (stable, so
// entries without a parseable timestamp keep their merge order at the end)
// and caps the list for the caller-facing result.
func visibleHeadlines(headlines []fetcher.Headline, limit int) []fetcher.Headline {
	ordered := make([]fetcher.Headline, len(headlines))
	copy(ordered, headlines)

	sort.SliceStable(ordered, func(i, j int) bool {
		return seenTime(ordered[i]).After(seenTime(ordered[j]))
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	if ordered == nil {
		ordered = []fetcher.Headline{}
	}
	return ordered
}

func seenTime(h fetcher.Headline) time.Time {
	t, err := time.Parse(time.RFC3339, h.SeenDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
