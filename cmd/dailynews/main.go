package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dailynews/internal/apiclient"
	"dailynews/internal/config"
	"dailynews/internal/fetcher"
	"dailynews/internal/logging"
	"dailynews/internal/mailer"
	"dailynews/internal/pipeline"
	"dailynews/internal/summarizer"
)

var (
	version = "dev"

	// Global flags
	configPath string
	verbose    bool

	// Root command flags
	topicsFlag   string
	hoursFlag    int
	regionFlag   string
	languageFlag string
	useAPI       bool
	emailFlag    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "dailynews",
	Short:   "Fetch recent headlines per topic and produce a short digest",
	Version: version,
	Long: `dailynews pulls fresh headlines from GDELT for each requested topic,
merges and deduplicates them, and condenses them into a short summary via
the configured summarization backend.

Examples:
  # One-shot digest for the default topics
  dailynews

  # Custom topics and window, offline stub backend
  DAILYNEWS_OFFLINE=1 dailynews -t "finance,energy" -h 12

  # Route through a running API server and email the result
  dailynews --use-api -t finance -e me@example.com`,
	SilenceUsage: true,
	RunE:         runDigest,
}

func init() {
	// -h belongs to --hours, as in the original CLI; help stays long-form.
	rootCmd.PersistentFlags().Bool("help", false, "show help")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional, env-only without it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().StringVarP(&topicsFlag, "topics", "t", "finance,economy,politics", "comma-separated topics to search for")
	rootCmd.Flags().IntVarP(&hoursFlag, "hours", "h", 8, "lookback period in hours")
	rootCmd.Flags().StringVarP(&regionFlag, "region", "r", "", "optional region code (GDELT sourceCountry)")
	rootCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "optional language code (GDELT sourceLang)")
	rootCmd.Flags().BoolVar(&useAPI, "use-api", false, "route through the HTTP API instead of the in-process pipeline")
	rootCmd.Flags().StringVarP(&emailFlag, "email", "e", "", "email address to send the summary to")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func setup() (*config.Config, *zap.Logger, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Logging.Format)
	return cfg, logger, nil
}

// buildOrchestrator wires the pipeline: one shared HTTP connection pool for
// both the headline source and the remote summarizer, per-call timeouts
// applied via context.
func buildOrchestrator(cfg *config.Config, logger *zap.Logger) (*pipeline.Orchestrator, error) {
	httpClient := &http.Client{}

	source := fetcher.NewGDELTSource(httpClient, cfg.Fetcher.BaseURL, cfg.Fetcher.MaxRecords)
	topicFetcher := fetcher.NewTopicFetcher(
		source,
		time.Duration(cfg.Fetcher.TimeoutSeconds)*time.Second,
		cfg.Fetcher.MaxInFlight,
		logger,
	)

	summ, err := summarizer.New(cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.New(topicFetcher, summ, cfg.Digest.MaxChars, cfg.Digest.MaxHeadlines, logger), nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := pipeline.SummaryRequest{
		Topics:   strings.Split(topicsFlag, ","),
		Hours:    hoursFlag,
		Region:   regionFlag,
		Language: languageFlag,
	}

	var result *pipeline.SummaryResult
	if useAPI {
		client := apiclient.New(cfg.Server.BaseURL, 2*time.Minute)
		result, err = client.Summary(ctx, req)
	} else {
		var orch *pipeline.Orchestrator
		orch, err = buildOrchestrator(cfg, logger)
		if err == nil {
			result, err = orch.ProduceSummary(ctx, req)
		}
	}
	if err != nil {
		return err
	}

	fmt.Println(formatResult(result))

	if emailFlag != "" {
		if err := sendByEmail(ctx, cfg, result, emailFlag); err != nil {
			fmt.Printf("Failed to send email: %v\n", err)
		} else {
			fmt.Printf("Email sent to %s\n", emailFlag)
		}
	}

	return nil
}

func sendByEmail(ctx context.Context, cfg *config.Config, result *pipeline.SummaryResult, to string) error {
	m, err := mailer.New(ctx, cfg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("DailyNews summary for %s", strings.Join(result.Topics, ", "))
	return m.Send(ctx, []string{to}, subject, formatResult(result))
}

// formatResult renders the summary plus the top headlines for stdout and for
// email bodies.
func formatResult(result *pipeline.SummaryResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("DailyNews summary for %s (last %dh):\n", strings.Join(result.Topics, ", "), result.Hours))
	sb.WriteString(result.Summary)
	sb.WriteString("\n")

	if len(result.Headlines) > 0 {
		sb.WriteString("\nTop headlines:\n")
		top := result.Headlines
		if len(top) > 3 {
			top = top[:3]
		}
		for _, h := range top {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", h.Title, h.SourceDomain))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
