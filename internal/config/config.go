package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"marketfetch/internal/apperrors"
	"marketfetch/internal/model"
	"marketfetch/internal/secrets"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Fetch    FetchConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ProviderConfig pairs a provider's immutable configuration with the
// credentials of its account pool. Keyless providers carry a single
// empty credential.
type ProviderConfig struct {
	Provider model.Provider
	APIKeys  []string
}

// FetchConfig holds the acquisition-engine configuration: which
// providers are enabled, their ceilings and credentials, the priority
// order per data kind, and worker/batch settings.
type FetchConfig struct {
	Providers     []ProviderConfig
	Priority      map[model.DataKind][]string
	Workers       int
	BatchDeadline time.Duration
	CronSpec      string // empty disables the scheduler
	Tickers       []string
}

// providerDefaults is the built-in catalogue of supported providers with
// their documented free-tier ceilings. Ceilings can be overridden per
// provider via <NAME>_CALLS_PER_MINUTE / <NAME>_CALLS_PER_DAY.
var providerDefaults = map[string]model.Provider{
	"yahoo": {
		ID:             "yahoo",
		Kinds:          []model.DataKind{model.KindPricing, model.KindFundamentals},
		CallsPerMinute: 60,
		CallsPerDay:    8000,
	},
	"finnhub": {
		ID:             "finnhub",
		Kinds:          []model.DataKind{model.KindFundamentals, model.KindRatings},
		CallsPerMinute: 60,
		CallsPerDay:    3600,
	},
	"alphavantage": {
		ID:             "alphavantage",
		Kinds:          []model.DataKind{model.KindPricing, model.KindFundamentals},
		CallsPerMinute: 5,
		CallsPerDay:    500,
	},
}

// keyless providers work without a credential and always get a single
// anonymous account.
var keyless = map[string]bool{"yahoo": true}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/marketfetch.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	fetch, err := loadFetch()
	if err != nil {
		return nil, err
	}
	config.Fetch = *fetch

	return config, nil
}

func loadFetch() (*FetchConfig, error) {
	sealer, err := secrets.New(os.Getenv("SECRETS_KEY"))
	if err != nil {
		return nil, err
	}

	fetch := &FetchConfig{
		Workers:       getEnvInt("WORKERS", 3),
		BatchDeadline: time.Duration(getEnvInt("BATCH_DEADLINE_MINUTES", 0)) * time.Minute,
		CronSpec:      getEnv("FETCH_CRON", ""),
		Tickers:       splitList(os.Getenv("TICKERS")),
		Priority:      map[model.DataKind][]string{},
	}
	if fetch.Workers < 1 || fetch.Workers > 16 {
		return nil, fmt.Errorf("WORKERS must be between 1 and 16, got %d", fetch.Workers)
	}

	enabled := splitList(getEnv("PROVIDERS", "yahoo,finnhub,alphavantage"))
	for _, name := range enabled {
		def, ok := providerDefaults[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownProvider, name)
		}

		prefix := strings.ToUpper(name)
		def.CallsPerMinute = getEnvInt(prefix+"_CALLS_PER_MINUTE", def.CallsPerMinute)
		def.CallsPerDay = getEnvInt(prefix+"_CALLS_PER_DAY", def.CallsPerDay)

		keys, err := revealKeys(sealer, os.Getenv(prefix+"_API_KEYS"))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s credentials: %w", name, err)
		}
		if len(keys) == 0 {
			if !keyless[name] {
				log.Printf("Warning: provider %s enabled but %s_API_KEYS not set, skipping", name, prefix)
				continue
			}
			keys = []string{""}
		}

		fetch.Providers = append(fetch.Providers, ProviderConfig{Provider: def, APIKeys: keys})
	}
	if len(fetch.Providers) == 0 {
		return nil, apperrors.ErrNoCredentials
	}

	priorityDefaults := map[model.DataKind]string{
		model.KindFundamentals: "yahoo,finnhub,alphavantage",
		model.KindPricing:      "yahoo,alphavantage",
		model.KindRatings:      "finnhub",
	}
	priorityEnv := map[model.DataKind]string{
		model.KindFundamentals: "PRIORITY_FUNDAMENTALS",
		model.KindPricing:      "PRIORITY_PRICING",
		model.KindRatings:      "PRIORITY_RATINGS",
	}
	for kind, envName := range priorityEnv {
		fetch.Priority[kind] = fetch.filterPriority(kind, splitList(getEnv(envName, priorityDefaults[kind])))
	}

	return fetch, nil
}

// filterPriority drops priority entries that are not enabled or cannot
// serve the data kind, preserving the configured order.
func (f *FetchConfig) filterPriority(kind model.DataKind, names []string) []string {
	var out []string
	for _, name := range names {
		for _, pc := range f.Providers {
			if pc.Provider.ID == name && pc.Provider.Supports(kind) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// ProviderByID returns the configuration for one enabled provider.
func (f *FetchConfig) ProviderByID(id string) (ProviderConfig, bool) {
	for _, pc := range f.Providers {
		if pc.Provider.ID == id {
			return pc, true
		}
	}
	return ProviderConfig{}, false
}

func revealKeys(sealer *secrets.Sealer, raw string) ([]string, error) {
	var keys []string
	for _, k := range splitList(raw) {
		plain, err := sealer.Reveal(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, plain)
	}
	return keys, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
