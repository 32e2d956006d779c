package summarizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailynews/internal/config"
	"dailynews/internal/digest"
	"dailynews/internal/fetcher"
)

func TestOfflineJoinsTitles(t *testing.T) {
	text := digest.Build([]fetcher.Headline{
		{Title: "Markets rally", SourceDomain: "news.example.com"},
		{Title: "Rates on hold", SourceDomain: "other.example.org"},
	}, 1000)

	out, err := NewOffline().Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, "Markets rally; Rates on hold", out)
}

func TestOfflineIsDeterministic(t *testing.T) {
	text := digest.Build([]fetcher.Headline{{Title: "Markets rally"}}, 1000)

	first, err := NewOffline().Summarize(context.Background(), text)
	require.NoError(t, err)
	second, err := NewOffline().Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOfflineEmptyPlaceholder(t *testing.T) {
	out, err := NewOffline().Summarize(context.Background(), digest.EmptyPlaceholder)
	require.NoError(t, err)
	assert.Equal(t, NoNewsSummary, out)
}

func TestNewSelectsBackend(t *testing.T) {
	offline, err := New(&config.Config{
		Summarizer: config.SummarizerConfig{Backend: config.BackendOffline},
	}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Offline{}, offline)

	remote, err := New(&config.Config{
		Summarizer: config.SummarizerConfig{
			Backend:  config.BackendHuggingFace,
			Model:    "test/model",
			APIToken: "token",
		},
	}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &HuggingFace{}, remote)

	_, err = New(&config.Config{
		Summarizer: config.SummarizerConfig{Backend: "carrier-pigeon"},
	}, nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}
