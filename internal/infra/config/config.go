// Package config resolves runtime configuration once at process start.
// Precedence, lowest first: built-in defaults, optional YAML file, process
// environment (optionally seeded from a .env file). All fields have safe
// defaults so the binary runs without any setup.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for tellermcp.
type Config struct {
	// Teller API
	TellerBaseURL string        // TELLER_API_BASE_URL, default "https://delta-neutral-api.teller.org"
	TellerTimeout time.Duration // TELLER_API_TIMEOUT_MS, default 15000

	// Process
	LogLevel string // TELLERMCP_LOG_LEVEL, default "info"
	HTTPAddr string // TELLERMCP_HTTP_ADDR, empty serves on stdio
}

const (
	envKeyTellerBaseURL = "TELLER_API_BASE_URL"
	envKeyTellerTimeout = "TELLER_API_TIMEOUT_MS"
	envKeyLogLevel      = "TELLERMCP_LOG_LEVEL"
	envKeyHTTPAddr      = "TELLERMCP_HTTP_ADDR"

	defaultTellerBaseURL   = "https://delta-neutral-api.teller.org"
	defaultTellerTimeoutMs = 15000
	defaultLogLevel        = "info"
)

// ErrInvalidConfig is wrapped by every validation failure returned from Load.
var ErrInvalidConfig = errors.New("invalid config")

// fileConfig mirrors the optional YAML file. Zero values mean "not set".
type fileConfig struct {
	Teller struct {
		BaseURL   string `yaml:"base_url"`
		TimeoutMs int    `yaml:"timeout_ms"`
	} `yaml:"teller"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TellerBaseURL: defaultTellerBaseURL,
		TellerTimeout: defaultTellerTimeoutMs * time.Millisecond,
		LogLevel:      defaultLogLevel,
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.TellerBaseURL = envOr(envKeyTellerBaseURL, cfg.TellerBaseURL)
	cfg.LogLevel = envOr(envKeyLogLevel, cfg.LogLevel)
	cfg.HTTPAddr = envOr(envKeyHTTPAddr, cfg.HTTPAddr)

	if raw := strings.TrimSpace(os.Getenv(envKeyTellerTimeout)); raw != "" {
		timeout, err := parseTimeoutMs(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, envKeyTellerTimeout, err)
		}
		cfg.TellerTimeout = timeout
	}

	return cfg, nil
}

// LoadDotEnv seeds the process environment from the given .env files (".env"
// when none are given). Variables already set are never overridden; missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}

	if v := strings.TrimSpace(fc.Teller.BaseURL); v != "" {
		cfg.TellerBaseURL = v
	}
	if fc.Teller.TimeoutMs < 0 {
		return fmt.Errorf("%w: teller.timeout_ms must be positive", ErrInvalidConfig)
	}
	if fc.Teller.TimeoutMs > 0 {
		cfg.TellerTimeout = time.Duration(fc.Teller.TimeoutMs) * time.Millisecond
	}
	if v := strings.TrimSpace(fc.Log.Level); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(fc.HTTP.Addr); v != "" {
		cfg.HTTPAddr = v
	}
	return nil
}

func parseTimeoutMs(raw string) (time.Duration, error) {
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// envOr returns the trimmed value of the environment variable key, or fallback
// if it is unset or blank.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
