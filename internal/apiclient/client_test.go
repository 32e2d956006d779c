package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailynews/internal/fetcher"
	"dailynews/internal/pipeline"
)

func TestSummaryRoundTrip(t *testing.T) {
	want := pipeline.SummaryResult{
		Topics:       []string{"finance", "economy"},
		Hours:        8,
		Region:       "US",
		FetchedCount: 2,
		Summary:      "the summary",
		Headlines: []fetcher.Headline{
			{Title: "A", URL: "https://a", SourceDomain: "x.com", SeenDate: "2025-01-02T15:00:00Z"},
		},
	}

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/summary", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"topics":     q.Get("topics"),
			"hours":      q.Get("hours"),
			"region":     q.Get("region"),
			"maxrecords": q.Get("maxrecords"),
		}
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer srv.Close()

	client := New(srv.URL, time.Second)
	result, err := client.Summary(context.Background(), pipeline.SummaryRequest{
		Topics:     []string{"finance", "economy"},
		Hours:      8,
		Region:     "US",
		MaxRecords: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, &want, result)

	assert.Equal(t, "finance,economy", gotQuery["topics"])
	assert.Equal(t, "8", gotQuery["hours"])
	assert.Equal(t, "US", gotQuery["region"])
	assert.Equal(t, "50", gotQuery["maxrecords"])
}

func TestSummaryBadRequestBecomesValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "hours must be between 1 and 72"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Summary(context.Background(), pipeline.SummaryRequest{
		Topics: []string{"finance"},
		Hours:  0,
	})
	var vErr *pipeline.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "hours must be between")
}

func TestSummaryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "summarization failed"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Summary(context.Background(), pipeline.SummaryRequest{
		Topics: []string{"finance"},
		Hours:  8,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "summarization failed")
}

func TestSummaryUnreachableServer(t *testing.T) {
	client := New("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Summary(context.Background(), pipeline.SummaryRequest{
		Topics: []string{"finance"},
		Hours:  8,
	})
	require.Error(t, err)
}

func TestSummaryMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, time.Second).Summary(context.Background(), pipeline.SummaryRequest{
		Topics: []string{"finance"},
		Hours:  8,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}
