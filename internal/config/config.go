package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summarizer backend identifiers.
const (
	BackendHuggingFace = "huggingface"
	BackendOffline     = "offline"
)

type Config struct {
	Fetcher    FetcherConfig    `yaml:"fetcher"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Digest     DigestConfig     `yaml:"digest"`
	Server     ServerConfig     `yaml:"server"`
	Mailer     MailerConfig     `yaml:"mailer"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type FetcherConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRecords     int    `yaml:"max_records"`
	MaxInFlight    int    `yaml:"max_in_flight"`
}

type SummarizerConfig struct {
	Backend        string `yaml:"backend"`
	Model          string `yaml:"model"`
	APIToken       string `yaml:"api_token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type DigestConfig struct {
	MaxChars     int `yaml:"max_chars"`
	MaxHeadlines int `yaml:"max_headlines"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MailerConfig struct {
	Transport string     `yaml:"transport"`
	SMTP      SMTPConfig `yaml:"smtp"`
	SES       SESConfig  `yaml:"ses"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type SESConfig struct {
	Region string `yaml:"region"`
	From   string `yaml:"from"`
}

type ScheduleConfig struct {
	Cron       string   `yaml:"cron"`
	RunOnStart bool     `yaml:"run_on_start"`
	Topics     []string `yaml:"topics"`
	Hours      int      `yaml:"hours"`
	Recipients []string `yaml:"recipients"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Fetcher.TimeoutSeconds == 0 {
		cfg.Fetcher.TimeoutSeconds = 10
	}
	if cfg.Fetcher.MaxRecords == 0 {
		cfg.Fetcher.MaxRecords = 75
	}
	if cfg.Fetcher.MaxInFlight == 0 {
		cfg.Fetcher.MaxInFlight = 4
	}
	if cfg.Summarizer.Backend == "" {
		cfg.Summarizer.Backend = BackendHuggingFace
	}
	if cfg.Summarizer.Model == "" {
		cfg.Summarizer.Model = "sshleifer/distilbart-cnn-12-6"
	}
	if cfg.Summarizer.TimeoutSeconds == 0 {
		cfg.Summarizer.TimeoutSeconds = 30
	}
	if cfg.Digest.MaxChars == 0 {
		cfg.Digest.MaxChars = 1000
	}
	if cfg.Digest.MaxHeadlines == 0 {
		cfg.Digest.MaxHeadlines = 10
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8000"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{
			"http://localhost:19006",
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081",
			"http://localhost",
			"http://127.0.0.1",
		}
	}
	if cfg.Mailer.SMTP.Port == 0 {
		cfg.Mailer.SMTP.Port = 587
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 8 * * *"
	}
	if cfg.Schedule.Hours == 0 {
		cfg.Schedule.Hours = 8
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnv layers well-known environment variables over the file values so
// secrets never need to live in the config file.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("HF_API_TOKEN"); v != "" {
		cfg.Summarizer.APIToken = v
	}
	if v := os.Getenv("HF_MODEL"); v != "" {
		cfg.Summarizer.Model = v
	}
	if v := os.Getenv("DAILYNEWS_OFFLINE"); isTruthy(v) {
		cfg.Summarizer.Backend = BackendOffline
	}
	if v := os.Getenv("DAILYNEWS_API_URL"); v != "" {
		cfg.Server.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: API_PORT must be an integer")
		}
		cfg.Server.Addr = fmt.Sprintf(":%d", port)
	}
	if v := os.Getenv("EMAIL_HOST"); v != "" {
		cfg.Mailer.SMTP.Host = v
	}
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: EMAIL_PORT must be an integer")
		}
		cfg.Mailer.SMTP.Port = port
	}
	if v := os.Getenv("EMAIL_USERNAME"); v != "" {
		cfg.Mailer.SMTP.Username = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		cfg.Mailer.SMTP.Password = v
	}
	if v := os.Getenv("EMAIL_FROM"); v != "" {
		cfg.Mailer.SMTP.From = v
	}
	return nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func validate(cfg *Config) error {
	switch cfg.Summarizer.Backend {
	case BackendHuggingFace:
		// Missing credentials for the remote backend is a startup failure,
		// never deferred to per-request handling.
		if cfg.Summarizer.APIToken == "" {
			return fmt.Errorf("config: summarizer.api_token is required for the %s backend (set HF_API_TOKEN, or DAILYNEWS_OFFLINE=1 for the stub)", BackendHuggingFace)
		}
		if cfg.Summarizer.Model == "" {
			return fmt.Errorf("config: summarizer.model is required for the %s backend", BackendHuggingFace)
		}
	case BackendOffline:
	default:
		return fmt.Errorf("config: unsupported summarizer backend %q (supported: %s, %s)", cfg.Summarizer.Backend, BackendHuggingFace, BackendOffline)
	}

	switch cfg.Mailer.Transport {
	case "", "smtp", "ses":
	default:
		return fmt.Errorf("config: unsupported mailer transport %q (supported: smtp, ses)", cfg.Mailer.Transport)
	}
	if cfg.Mailer.Transport == "smtp" {
		if cfg.Mailer.SMTP.Host == "" {
			return fmt.Errorf("config: mailer.smtp.host is required for the smtp transport (set EMAIL_HOST)")
		}
		if cfg.Mailer.SMTP.From == "" && cfg.Mailer.SMTP.Username == "" {
			return fmt.Errorf("config: mailer.smtp.from or mailer.smtp.username is required for the smtp transport")
		}
	}
	if cfg.Mailer.Transport == "ses" && cfg.Mailer.SES.From == "" {
		return fmt.Errorf("config: mailer.ses.from is required for the ses transport")
	}

	return nil
}

// Load reads an optional config file, expands ${VAR} references, layers
// environment overrides, applies defaults and validates. An empty path means
// environment-only configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
