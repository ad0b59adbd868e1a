package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	ClientSecretsFile    string
	TokenFile            string
	Scopes               []string
	YouTubeAPIKey        string // non-empty = API-key mode, OAuth skipped
	OutputDir            string
	MaxVideos            int
	APIRequestsPerSecond float64
	APIMaxRetries        int
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	LedgerPath           string // empty = outcome ledger disabled
	DatabaseURL          string // empty = postgres sink disabled
	HTTPClient           *http.Client
}

// cfg is read by RetryConfigFromCfg.
var cfg Config

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
}
