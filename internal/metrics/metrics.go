package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailynews_fetch_failures_total",
			Help: "Total number of per-topic fetch failures by kind",
		},
		[]string{"kind"},
	)

	HeadlinesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dailynews_headlines_fetched_total",
			Help: "Total number of headlines fetched before deduplication",
		},
	)

	SummarizeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dailynews_summarize_requests_total",
			Help: "Total number of summarization backend calls by outcome",
		},
		[]string{"backend", "status"},
	)
)
