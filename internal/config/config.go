// Package config reads the process environment once into an immutable Config
// value. Nothing else in the repo touches os.Getenv for behavior-affecting
// settings; backend selection and construction work off this snapshot so they
// stay deterministic and testable.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Chapsvision-dev/company-profile-store/internal/retry"
)

// EnvProduction is the mode flag value that allows remote backend selection.
// Any other value (including unset) means development.
const EnvProduction = "production"

// Config is the environment signal set plus backend settings, captured at
// Load time.
type Config struct {
	// Environment is the normalized ENVIRONMENT value ("development" unless set).
	Environment string

	// LocalRoot is the local backend's profile directory.
	LocalRoot string

	Azure AzureConfig

	// Retry knobs are consumed by the CLI around single-record operations;
	// the storage core itself never retries.
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	RetryMultiplier   float64
	RetryEnableJitter bool
}

// AzureConfig describes how to reach the remote blob backend.
type AzureConfig struct {
	Account   string
	Container string
	SASToken  string

	ClientID     string
	ClientSecret string
	TenantID     string

	// Endpoint overrides the derived https://<account>.blob.core.windows.net/.
	Endpoint string

	// Timeout bounds each network call.
	Timeout time.Duration
}

// Complete reports whether the values required for remote selection are all
// present. Credentials are not part of the gate: the default credential chain
// means their absence is not detectable here.
func (a AzureConfig) Complete() bool {
	return a.Account != "" && a.Container != ""
}

// Validate enforces the required remote values for call sites that demand the
// Azure backend explicitly (e.g. migration destination).
func (a AzureConfig) Validate() error {
	if !a.Complete() {
		return errors.New("azure: AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_CONTAINER are required")
	}
	return nil
}

// ServiceURL returns the blob endpoint for the configured account.
func (a AzureConfig) ServiceURL() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", a.Account)
}

// Load reads config from environment variables and applies defaults.
func Load() (Config, error) {
	get := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	parseInt := func(key string, def int) int {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				return n
			}
		}
		return def
	}

	parseDur := func(key string, def time.Duration) time.Duration {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if d, err := time.ParseDuration(v); err == nil && d >= 0 {
				return d
			}
			// Bare integers are accepted as seconds for compatibility with
			// deployments that set AZURE_STORAGE_TIMEOUT=30.
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
				return time.Duration(n) * time.Second
			}
		}
		return def
	}

	parseFloat := func(key string, def float64) float64 {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
				return f
			}
		}
		return def
	}

	parseBool := func(key string, def bool) bool {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "y", "on":
				return true
			case "0", "false", "no", "n", "off":
				return false
			}
		}
		return def
	}

	cfg := Config{
		Environment: strings.ToLower(get("ENVIRONMENT", "development")),
		LocalRoot:   get("PROFILES_DIR", "./profiles"),

		Azure: AzureConfig{
			Account:      get("AZURE_STORAGE_ACCOUNT", ""),
			Container:    get("AZURE_STORAGE_CONTAINER", "company-profiles"),
			SASToken:     get("AZURE_STORAGE_SAS", ""),
			ClientID:     get("AZURE_CLIENT_ID", ""),
			ClientSecret: get("AZURE_CLIENT_SECRET", ""),
			TenantID:     get("AZURE_TENANT_ID", ""),
			Endpoint:     get("AZURE_BLOB_ENDPOINT", ""),
			Timeout:      parseDur("AZURE_STORAGE_TIMEOUT", 30*time.Second),
		},

		RetryMaxAttempts:  parseInt("RETRY_MAX_ATTEMPTS", retry.Default.MaxAttempts),
		RetryInitialDelay: parseDur("RETRY_INITIAL_DELAY", retry.Default.InitialDelay),
		RetryMaxDelay:     parseDur("RETRY_MAX_DELAY", retry.Default.MaxDelay),
		RetryMultiplier:   parseFloat("RETRY_MULTIPLIER", retry.Default.Multiplier),
		RetryEnableJitter: parseBool("RETRY_JITTER", retry.Default.Jitter),
	}

	return cfg, nil
}

// RetryOptions converts retry-related config values to retry.Options.
func (c Config) RetryOptions() retry.Options {
	return retry.Options{
		MaxAttempts:  c.RetryMaxAttempts,
		InitialDelay: c.RetryInitialDelay,
		MaxDelay:     c.RetryMaxDelay,
		Multiplier:   c.RetryMultiplier,
		Jitter:       c.RetryEnableJitter,
	}
}
