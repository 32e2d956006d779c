package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArtlist = `{
	"articles": [
		{"title": " Markets rally ", "url": "https://news.example.com/a", "seendate": "202501021504", "domain": "news.example.com"},
		{"title": "Rates on hold", "url": "https://other.example.org/b", "seendate": "20250102T150400Z", "domain": ""}
	]
}`

func TestGDELTFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"query":      q.Get("query"),
			"mode":       q.Get("mode"),
			"format":     q.Get("format"),
			"timespan":   q.Get("timespan"),
			"maxrecords": q.Get("maxrecords"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleArtlist))
	}))
	defer srv.Close()

	source := NewGDELTSource(srv.Client(), srv.URL, 75)
	headlines, err := source.Fetch(context.Background(), TopicQuery{
		Topic:    "finance",
		Hours:    8,
		Region:   "US",
		Language: "eng",
	})
	require.NoError(t, err)
	require.Len(t, headlines, 2)

	assert.Equal(t, "finance sourceCountry:US sourceLang:eng", gotQuery["query"])
	assert.Equal(t, "artlist", gotQuery["mode"])
	assert.Equal(t, "json", gotQuery["format"])
	assert.Equal(t, "8h", gotQuery["timespan"])
	assert.Equal(t, "75", gotQuery["maxrecords"])

	// Title trimmed, seendate normalized to RFC 3339.
	assert.Equal(t, "Markets rally", headlines[0].Title)
	assert.Equal(t, "news.example.com", headlines[0].SourceDomain)
	assert.Equal(t, "2025-01-02T15:04:00Z", headlines[0].SeenDate)

	// Unparseable seendate kept verbatim; domain derived from the URL.
	assert.Equal(t, "20250102T150400Z", headlines[1].SeenDate)
	assert.Equal(t, "other.example.org", headlines[1].SourceDomain)
}

func TestGDELTFetchNoArticlesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	source := NewGDELTSource(srv.Client(), srv.URL, 0)
	headlines, err := source.Fetch(context.Background(), TopicQuery{Topic: "finance", Hours: 8})
	require.NoError(t, err)
	assert.Empty(t, headlines)
}

func TestGDELTFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source := NewGDELTSource(srv.Client(), srv.URL, 0)
	_, err := source.Fetch(context.Background(), TopicQuery{Topic: "finance", Hours: 8})
	require.Error(t, err)
	assert.Equal(t, Unreachable, classify(err))
}

func TestGDELTFetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>service unavailable</html>`))
	}))
	defer srv.Close()

	source := NewGDELTSource(srv.Client(), srv.URL, 0)
	_, err := source.Fetch(context.Background(), TopicQuery{Topic: "finance", Hours: 8})
	require.Error(t, err)
	assert.Equal(t, MalformedResponse, classify(err))
}

func TestGDELTFetchPerQueryMaxRecords(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("maxrecords")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	source := NewGDELTSource(srv.Client(), srv.URL, 75)
	_, err := source.Fetch(context.Background(), TopicQuery{Topic: "finance", Hours: 8, MaxRecords: 10})
	require.NoError(t, err)
	assert.Equal(t, "10", got)
}
