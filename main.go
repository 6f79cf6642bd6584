// go-transcript — transcript acquisition MCP server.
//
// Obtains caption transcripts for videos despite the hosting platform
// blocking datacenter IP ranges, by walking an ordered chain of
// independent egress routes: edge worker, rotating datacenter proxies,
// residential proxy, anonymizing overlay, caller-browser relay, and an
// authoritative metadata API as a last-resort existence check.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go-transcript/internal/engine"
	"github.com/anatolykoptev/go-transcript/internal/engine/transport"
	"github.com/anatolykoptev/go-transcript/internal/transcriptserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	deps := initEngine()

	slog.Info("starting go-transcript",
		slog.String("port", mcpPort),
		slog.Int("strategies", len(engine.Cfg.Strategies)),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go-transcript",
		Version: version,
	}, nil)

	transcriptserver.RegisterTools(server, deps)

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go-transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 300 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() transcriptserver.Deps {
	c := engine.Config{
		EdgeWorkerURL:    env.Str("EDGE_WORKER_URL", ""),
		EdgeWorkerSecret: env.Str("EDGE_WORKER_SECRET", ""),
		ServerlessURL:    env.Str("SERVERLESS_RELAY_URL", ""),
		ResidentialProxy: env.Str("RESIDENTIAL_PROXY_URL", ""),
		TorSOCKSAddr:     env.Str("TOR_SOCKS_ADDR", ""),
		TorControlAddr:   env.Str("TOR_CONTROL_ADDR", ""),
		TorControlPass:   env.Str("TOR_CONTROL_PASSWORD", ""),
		MetadataAPIKey:   env.Str("YOUTUBE_API_KEY", ""),
		Strategies:       env.List("STRATEGIES", "edge,rotating,residential,overlay,relay,metadata"),
		CacheTTL:         env.Duration("CACHE_TTL", 10*time.Minute),
		CacheMaxEntries:  env.Int("CACHE_MAX_ENTRIES", 1000),
		RedisURL:         env.Str("REDIS_URL", ""),
		MinRequestDelay:  env.Duration("MIN_REQUEST_DELAY", 2*time.Second),
		RequestsPerMin:   env.Int("REQUESTS_PER_MINUTE", 10),
		FetchTimeout:     env.Duration("FETCH_TIMEOUT", 15*time.Second),
		Retry:            engine.DefaultRetryConfig,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))
	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, rotating route degraded", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	c.Cache = engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries)
	c.Limiter = engine.NewRateLimiter(c.MinRequestDelay, c.RequestsPerMin)
	engine.Init(c)

	relay := transport.NewRelayStore(env.Duration("RELAY_MAX_AGE", 5*time.Minute))
	metadata := buildMetadata(c)
	chain := transport.NewChain(buildStrategies(c, relay, metadata)...)

	return transcriptserver.Deps{Chain: chain, Relay: relay, Metadata: metadata}
}

func buildMetadata(c engine.Config) *transport.MetadataStrategy {
	if c.MetadataAPIKey == "" {
		return nil
	}
	return &transport.MetadataStrategy{APIKey: c.MetadataAPIKey}
}

// buildStrategies assembles the enabled transports in configured order.
// Unconfigured or unknown entries are skipped with a log line, so route
// changes are pure configuration.
func buildStrategies(c engine.Config, relay *transport.RelayStore, metadata *transport.MetadataStrategy) []transport.Strategy {
	var out []transport.Strategy
	for _, name := range c.Strategies {
		switch name {
		case "edge":
			if c.EdgeWorkerURL == "" {
				slog.Info("strategy skipped, not configured", slog.String("strategy", name))
				continue
			}
			out = append(out, &transport.EdgeStrategy{Endpoint: c.EdgeWorkerURL, Secret: c.EdgeWorkerSecret})
		case "rotating":
			if c.ServerlessURL == "" && c.BrowserClient == nil {
				slog.Info("strategy skipped, not configured", slog.String("strategy", name))
				continue
			}
			out = append(out, &transport.RotatingStrategy{Endpoint: c.ServerlessURL, Client: c.BrowserClient})
		case "residential":
			if c.ResidentialProxy == "" {
				slog.Info("strategy skipped, not configured", slog.String("strategy", name))
				continue
			}
			s, err := transport.NewResidentialStrategy(c.ResidentialProxy, c.FetchTimeout)
			if err != nil {
				slog.Warn("residential strategy init failed", slog.Any("error", err))
				continue
			}
			out = append(out, s)
		case "overlay":
			if c.TorSOCKSAddr == "" {
				slog.Info("strategy skipped, not configured", slog.String("strategy", name))
				continue
			}
			s, err := transport.NewOverlayStrategy(c.TorSOCKSAddr, c.TorControlAddr, c.TorControlPass, c.FetchTimeout)
			if err != nil {
				slog.Warn("overlay strategy init failed", slog.Any("error", err))
				continue
			}
			out = append(out, s)
		case "relay":
			out = append(out, &transport.RelayStrategy{Store: relay})
		case "metadata":
			if metadata == nil {
				slog.Info("strategy skipped, not configured", slog.String("strategy", name))
				continue
			}
			out = append(out, metadata)
		default:
			slog.Warn("unknown strategy in STRATEGIES", slog.String("strategy", name))
		}
	}
	return out
}
