package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGDELTBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	defaultMaxRecords   = 75
)

// gdeltResponse is the artlist-mode payload. A query with no matches comes
// back without the articles key, which is an empty success, not an error.
type gdeltResponse struct {
	Articles []gdeltArticle `json:"articles"`
}

type gdeltArticle struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	SeenDate string `json:"seendate"`
	Domain   string `json:"domain"`
}

// GDELTSource fetches headlines from the GDELT 2.0 doc API.
type GDELTSource struct {
	client     *http.Client
	baseURL    string
	maxRecords int
}

func NewGDELTSource(client *http.Client, baseURL string, maxRecords int) *GDELTSource {
	if client == nil {
		client = &http.Client{}
	}
	if baseURL == "" {
		baseURL = defaultGDELTBaseURL
	}
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	return &GDELTSource{
		client:     client,
		baseURL:    baseURL,
		maxRecords: maxRecords,
	}
}

func (s *GDELTSource) Fetch(ctx context.Context, q TopicQuery) ([]Headline, error) {
	maxRecords := q.MaxRecords
	if maxRecords <= 0 {
		maxRecords = s.maxRecords
	}

	search := q.Topic
	if q.Region != "" {
		search += " sourceCountry:" + q.Region
	}
	if q.Language != "" {
		search += " sourceLang:" + q.Language
	}

	params := url.Values{}
	params.Set("query", search)
	params.Set("mode", "artlist")
	params.Set("format", "json")
	params.Set("maxrecords", fmt.Sprintf("%d", maxRecords))
	params.Set("timespan", fmt.Sprintf("%dh", q.Hours))

	reqURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("gdelt: failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gdelt: request aborted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("gdelt: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gdelt: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gdelt: failed to read response: %w", err)
	}

	var payload gdeltResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("gdelt: failed to parse response: %w", err)
	}

	headlines := make([]Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		headlines = append(headlines, normalizeArticle(a))
	}
	return headlines, nil
}

// normalizeArticle maps a raw GDELT record onto a Headline with safe defaults.
// The seendate comes in as YYYYMMDDHHMM; anything else is kept verbatim.
func normalizeArticle(a gdeltArticle) Headline {
	domain := a.Domain
	if domain == "" {
		if u, err := url.Parse(a.URL); err == nil {
			domain = u.Host
		}
	}

	seen := strings.TrimSpace(a.SeenDate)
	if seen != "" {
		if t, err := time.Parse("200601021504", seen); err == nil {
			seen = t.Format(time.RFC3339)
		}
	}

	return Headline{
		Title:        strings.TrimSpace(a.Title),
		URL:          a.URL,
		SourceDomain: domain,
		SeenDate:     seen,
	}
}
