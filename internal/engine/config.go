package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main. The egress
// routes themselves are pre-provisioned elsewhere; only their endpoints
// and credentials arrive here.
type Config struct {
	// Strategy endpoints / credentials.
	EdgeWorkerURL    string // dedicated edge-proxy worker
	EdgeWorkerSecret string
	ServerlessURL    string // serverless relay function; empty = fetch via rotating client directly
	ResidentialProxy string // upstream proxy URL with credentials
	TorSOCKSAddr     string // host:port of the overlay SOCKS5 listener
	TorControlAddr   string // host:port of the control listener, empty = no circuit rotation
	TorControlPass   string
	MetadataAPIKey   string // authoritative metadata API key

	// Enabled strategies in traversal order, e.g. ["edge","rotating",...].
	Strategies []string

	// Tuning.
	CacheTTL        time.Duration
	CacheMaxEntries int
	RedisURL        string
	MinRequestDelay time.Duration
	RequestsPerMin  int
	Retry           RetryConfig
	FetchTimeout    time.Duration

	// Shared clients and services.
	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = rotating strategy disabled
	Cache         *Cache
	Limiter       *RateLimiter
	Sink          Sink // nil = results returned to caller only
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (transcript, transport).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
