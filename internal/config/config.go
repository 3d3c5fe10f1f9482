package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingCredential = errors.New("missing required credential")

// TieBreak names the side that wins when both providers changed a task at
// the exact same timestamp. This is a configuration choice, not something
// the reconciler derives.
type TieBreak string

const (
	TieBreakTracker   TieBreak = "tracker"
	TieBreakWorkspace TieBreak = "workspace"
)

type Config struct {
	TodoistAPIKey    string
	NotionToken      string
	NotionDatabaseID string

	SyncInterval time.Duration
	TieBreak     TieBreak
	StatusAddr   string
	LogLevel     string

	Email EmailConfig
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

// Enabled reports whether enough SMTP settings are present to send alerts.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.User != ""
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present (development convenience; real
// deployments set the environment directly).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TodoistAPIKey:    os.Getenv("TODOIST_API_KEY"),
		NotionToken:      os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		SyncInterval:     120 * time.Second,
		TieBreak:         TieBreakTracker,
		StatusAddr:       ":8080",
		LogLevel:         "info",
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Port:     587,
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			To:       os.Getenv("EMAIL_TO"),
		},
	}

	for name, value := range map[string]string{
		"TODOIST_API_KEY":    cfg.TodoistAPIKey,
		"NOTION_TOKEN":       cfg.NotionToken,
		"NOTION_DATABASE_ID": cfg.NotionDatabaseID,
	} {
		if value == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingCredential, name)
		}
	}

	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL %q: must be positive", v)
		}
		cfg.SyncInterval = d
	}

	if v := os.Getenv("SYNC_TIE_BREAK"); v != "" {
		switch TieBreak(v) {
		case TieBreakTracker, TieBreakWorkspace:
			cfg.TieBreak = TieBreak(v)
		default:
			return nil, fmt.Errorf("invalid SYNC_TIE_BREAK %q: must be %q or %q", v, TieBreakTracker, TieBreakWorkspace)
		}
	}

	if v, ok := os.LookupEnv("STATUS_ADDR"); ok {
		cfg.StatusAddr = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("EMAIL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EMAIL_PORT %q: %w", v, err)
		}
		cfg.Email.Port = port
	}
	if cfg.Email.To == "" {
		cfg.Email.To = cfg.Email.User
	}

	return cfg, nil
}
