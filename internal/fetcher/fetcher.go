package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dailynews/internal/metrics"
)

// Headline is one article record returned by the news source.
// Identity key is URL; a headline is immutable once fetched.
type Headline struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	SourceDomain string `json:"source_domain"`
	SeenDate     string `json:"seendate"`
}

// TopicQuery describes one topic/time-window/region/language lookup.
type TopicQuery struct {
	Topic      string
	Hours      int
	Region     string
	Language   string
	MaxRecords int // 0 means the source default
}

// ErrorKind classifies a per-topic fetch failure.
type ErrorKind string

const (
	TimedOut          ErrorKind = "timed_out"
	Unreachable       ErrorKind = "unreachable"
	MalformedResponse ErrorKind = "malformed_response"
)

// FetchError is a per-topic failure carried as data rather than propagated.
type FetchError struct {
	Kind ErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchOutcome is the result of one topic fetch: either headlines or a
// classified failure, never both.
type FetchOutcome struct {
	Topic     string
	Headlines []Headline
	Err       *FetchError
}

// Source queries the external news-search API for a single topic.
type Source interface {
	Fetch(ctx context.Context, q TopicQuery) ([]Headline, error)
}

// TopicFetcher fans out over a topic set concurrently. One topic's failure
// never aborts its siblings; only caller cancellation stops the batch.
type TopicFetcher struct {
	source      Source
	timeout     time.Duration
	maxInFlight int
	logger      *zap.Logger
}

func NewTopicFetcher(source Source, timeout time.Duration, maxInFlight int, logger *zap.Logger) *TopicFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &TopicFetcher{
		source:      source,
		timeout:     timeout,
		maxInFlight: maxInFlight,
		logger:      logger,
	}
}

// FetchAll returns one outcome per query, preserving input order even though
// the fetches race internally. Each fetch gets its own timeout.
func (f *TopicFetcher) FetchAll(ctx context.Context, queries []TopicQuery) []FetchOutcome {
	outcomes := make([]FetchOutcome, len(queries))

	var g errgroup.Group
	g.SetLimit(f.maxInFlight)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			headlines, err := f.source.Fetch(fctx, q)
			if err != nil {
				kind := classify(err)
				metrics.FetchFailures.WithLabelValues(string(kind)).Inc()
				f.logger.Warn("topic fetch failed",
					zap.String("topic", q.Topic),
					zap.String("kind", string(kind)),
					zap.Error(err))
				outcomes[i] = FetchOutcome{Topic: q.Topic, Err: &FetchError{Kind: kind, Err: err}}
				return nil
			}

			outcomes[i] = FetchOutcome{Topic: q.Topic, Headlines: headlines}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// classify maps a raw fetch error onto the per-topic failure taxonomy.
func classify(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return TimedOut
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return MalformedResponse
	}
	return Unreachable
}
