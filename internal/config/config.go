// Package config loads runtime settings from .env and the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port    string
	GinMode string

	// Browser
	ChromeBin         string
	BrowserControlURL string
	Headless          bool
	UserAgent         string

	// AirDNA credentials; never logged
	AirDNAEmail    string
	AirDNAPassword string

	// Cache
	CacheDBPath string
	CacheTTL    time.Duration

	// Enrichment
	EnrichListingTimeout time.Duration
	EnrichCostTimeout    time.Duration
	EnrichMaxListings    int
	EnrichQueueSize      int
	EnrichWorkers        int
	EnrichFetchInterval  time.Duration
	EnrichPersist        bool

	// Retry and page budgets
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RetryJitter       time.Duration
	NavigationTimeout time.Duration
	ExtractionTimeout time.Duration
	SelectorsFile     string

	// Zipcode resolver
	ZipcodeLLMURL   string
	ZipcodeLLMKey   string
	ZipcodeLLMModel string

	// HTTP surface
	AdminKeyHash   string
	RateLimitRPS   float64
	RateLimitBurst int

	// Cost model
	MortgageDownPayment float64
	MortgageRate        float64
	MortgageTermYears   int
	MortgageTaxRate     float64
	MortgageInsurance   float64
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		ChromeBin:         getEnv("CHROME_BIN", ""),
		BrowserControlURL: getEnv("BROWSER_CONTROL_URL", ""),
		Headless:          getEnvBool("HEADLESS", true),
		UserAgent:         getEnv("USER_AGENT", ""),

		AirDNAEmail:    getEnv("AIRDNA_EMAIL", ""),
		AirDNAPassword: getEnv("AIRDNA_PASSWORD", ""),

		CacheDBPath: getEnv("CACHE_DB_PATH", ""),
		CacheTTL:    getEnvDuration("CACHE_TTL", time.Hour),

		EnrichListingTimeout: getEnvDuration("ENRICH_LISTING_TIMEOUT", 30*time.Second),
		EnrichCostTimeout:    getEnvDuration("ENRICH_COST_TIMEOUT", 10*time.Second),
		EnrichMaxListings:    getEnvInt("ENRICH_MAX_LISTINGS", 0),
		EnrichQueueSize:      getEnvInt("ENRICH_QUEUE_SIZE", 32),
		EnrichWorkers:        getEnvInt("ENRICH_WORKERS", 1),
		EnrichFetchInterval:  getEnvDuration("ENRICH_FETCH_INTERVAL", 2*time.Second),
		EnrichPersist:        getEnvBool("ENRICH_PERSIST", true),

		RetryAttempts:     getEnvInt("RETRY_ATTEMPTS", 3),
		RetryBaseDelay:    getEnvDuration("RETRY_BASE_DELAY", time.Second),
		RetryJitter:       getEnvDuration("RETRY_JITTER", 2*time.Second),
		NavigationTimeout: getEnvDuration("NAVIGATION_TIMEOUT", 60*time.Second),
		ExtractionTimeout: getEnvDuration("EXTRACTION_TIMEOUT", 30*time.Second),
		SelectorsFile:     getEnv("SELECTORS_FILE", ""),

		ZipcodeLLMURL:   getEnv("ZIPCODE_LLM_URL", ""),
		ZipcodeLLMKey:   getEnv("ZIPCODE_LLM_KEY", ""),
		ZipcodeLLMModel: getEnv("ZIPCODE_LLM_MODEL", "gpt-4o-mini"),

		AdminKeyHash:   getEnv("ADMIN_KEY_HASH", ""),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),

		MortgageDownPayment: getEnvFloat("MORTGAGE_DOWN_PAYMENT", 0.20),
		MortgageRate:        getEnvFloat("MORTGAGE_RATE", 0.07),
		MortgageTermYears:   getEnvInt("MORTGAGE_TERM_YEARS", 30),
		MortgageTaxRate:     getEnvFloat("MORTGAGE_TAX_RATE", 0.011),
		MortgageInsurance:   getEnvFloat("MORTGAGE_INSURANCE_RATE", 0.0035),
	}
}

// HasAirDNACredentials reports whether enrichment can log in.
func (c *Config) HasAirDNACredentials() bool {
	return c.AirDNAEmail != "" && c.AirDNAPassword != ""
}

// IsRelease reports whether detailed errors must be hidden from clients.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
		log.Printf("⚠️  [config] invalid %s=%q, using %d", key, val, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
		log.Printf("⚠️  [config] invalid %s=%q, using %v", key, val, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			return b
		}
		log.Printf("⚠️  [config] invalid %s=%q, using %v", key, val, fallback)
	}
	return fallback
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️  [config] invalid %s=%q, using %v", key, val, fallback)
	return fallback
}
