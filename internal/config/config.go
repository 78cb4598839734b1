// Package config loads dashboard and backend settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/interviewdeck/internal/poller"
)

// EnvPrefix prefixes every environment variable read by this package.
const EnvPrefix = "INTERVIEWDECK_"

// Config holds all runtime settings except LLM providers (see llm.Config).
type Config struct {
	// BackendURL is where the dashboard sends API requests.
	BackendURL string

	PollInterval    time.Duration
	PollTimeout     time.Duration
	RefreshInterval time.Duration
	RequestTimeout  time.Duration

	// DBPath overrides the job history database location. Empty means
	// store.DefaultDBPath.
	DBPath string

	LogFile  string
	LogLevel string

	// Backend (serve) settings.
	ListenAddr     string
	ScreenshotDir  string
	CaptureDir     string
	TranscriptFile string

	// Recording defaults sent with POST /api/recording/start.
	DeviceName    string
	RecordSeconds int
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		BackendURL:      "http://127.0.0.1:5050",
		PollInterval:    2 * time.Second,
		PollTimeout:     60 * time.Second,
		RefreshInterval: time.Second,
		RequestTimeout:  15 * time.Second,
		LogFile:         defaultLogFile(),
		LogLevel:        "info",
		ListenAddr:      "127.0.0.1:5050",
		ScreenshotDir:   "screenshots",
		DeviceName:      "BlackHole",
		RecordSeconds:   5,
	}
}

// FromEnv loads .env when present, then overlays environment variables on
// Default.
func FromEnv() Config {
	// A missing .env is normal; the real environment still applies.
	_ = godotenv.Load()

	cfg := Default()
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.PollInterval = getEnvAsDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.PollTimeout = getEnvAsDuration("POLL_TIMEOUT", cfg.PollTimeout)
	cfg.RefreshInterval = getEnvAsDuration("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.DBPath = getEnv("DB", cfg.DBPath)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.ScreenshotDir = getEnv("SCREENSHOT_DIR", cfg.ScreenshotDir)
	cfg.CaptureDir = getEnv("CAPTURE_DIR", cfg.CaptureDir)
	cfg.TranscriptFile = getEnv("TRANSCRIPT_FILE", cfg.TranscriptFile)
	cfg.DeviceName = getEnv("DEVICE_NAME", cfg.DeviceName)
	cfg.RecordSeconds = getEnvAsInt("RECORD_SECONDS", cfg.RecordSeconds)
	return cfg
}

// Validate checks the settings the dashboard cannot run without.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%sBACKEND_URL must be an absolute URL, got %q", EnvPrefix, c.BackendURL)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%sPOLL_INTERVAL must be positive", EnvPrefix)
	}
	if c.PollTimeout < c.PollInterval {
		return fmt.Errorf("%sPOLL_TIMEOUT (%s) must not be shorter than the poll interval (%s)", EnvPrefix, c.PollTimeout, c.PollInterval)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%sREFRESH_INTERVAL must be positive", EnvPrefix)
	}
	return nil
}

// Poller returns the job poll timing.
func (c Config) Poller() poller.Config {
	cfg := poller.DefaultConfig()
	cfg.Interval = c.PollInterval
	cfg.Timeout = c.PollTimeout
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(EnvPrefix + key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("1500ms") and bare milliseconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func defaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "interviewdeck.log"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "interviewdeck", "interviewdeck.log")
}
