// go_ytcomments harvests YouTube comments with video counters into CSV.
//
// RUN_MODE selects what happens:
//
//	videos   (default) harvest the configured video list, stop at the first failure
//	channels           harvest the most viewed videos of each configured channel
//	serve              expose video_comments, channel_comments and harvest_outcomes as MCP tools
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytcomments/internal/commentserver"
	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/auth"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/harvest"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/output"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	initLogging(env.Str("LOG_LEVEL", "info"))
	if err := run(); err != nil {
		slog.Error("go_ytcomments failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := strings.ToLower(env.Str("RUN_MODE", "videos"))
	if err := validateMode(mode); err != nil {
		return err
	}
	c := initEngine()

	svc, err := newYouTubeService(ctx, c)
	if err != nil {
		return err
	}

	runner := &harvest.Runner{
		Source:    sources.NewClient(svc, c.APIRequestsPerSecond),
		OutputDir: c.OutputDir,
	}

	if c.LedgerPath != "" {
		ledger, err := harvest.OpenLedger(c.LedgerPath)
		if err != nil {
			slog.Warn("outcome ledger init failed", slog.Any("error", err))
		} else {
			defer ledger.Close()
			runner.Ledger = ledger
			slog.Info("outcome ledger initialized", slog.String("path", c.LedgerPath))
		}
	}

	var pg *output.PostgresSink
	if c.DatabaseURL != "" {
		sink, err := output.ConnectPostgres(ctx, c.DatabaseURL)
		if err != nil {
			slog.Warn("postgres sink init failed", slog.Any("error", err))
		} else {
			defer sink.Close()
			pg = sink
			runner.Mirrors = append(runner.Mirrors, sink)
		}
	}

	defer engine.LogMetrics()

	if mode == modeServe {
		return serve(runner, c)
	}
	return runBatch(ctx, runner, pg, mode, c)
}

const modeServe = "serve"

// validateMode rejects an unknown RUN_MODE before any credential work starts.
func validateMode(mode string) error {
	switch mode {
	case harvest.ModeVideos, harvest.ModeChannels, modeServe:
		return nil
	}
	return fmt.Errorf("unknown RUN_MODE %q (videos, channels, serve)", mode)
}

func runBatch(ctx context.Context, runner *harvest.Runner, pg *output.PostgresSink, mode string, c engine.Config) error {
	targets, err := engine.LoadTargets(env.Str("TARGETS_FILE", ""))
	if err != nil {
		return err
	}

	var out *engine.HarvestOutput
	if mode == harvest.ModeVideos {
		name := env.Str("OUTPUT_NAME", commentserver.DefaultVideosOutput)
		out, err = runner.RunVideos(ctx, targets.Videos, name)
	} else {
		name := env.Str("OUTPUT_NAME", commentserver.DefaultChannelsOutput)
		out, err = runner.RunChannels(ctx, targets.Channels, name, c.MaxVideos)
	}
	if out != nil {
		slog.Info("run finished",
			slog.String("run_id", out.RunID),
			slog.String("mode", out.Mode),
			slog.String("output", out.OutputPath),
			slog.Int("videos", out.Videos),
			slog.Int("skipped", out.Skipped),
			slog.Int("rows", out.Rows),
		)
		if pg != nil {
			logMirrored(context.WithoutCancel(ctx), pg, out.RunID)
		}
	}
	return err
}

func logMirrored(ctx context.Context, pg *output.PostgresSink, runID string) {
	n, err := pg.CountRun(ctx, runID)
	if err != nil {
		slog.Warn("postgres row count failed", slog.String("run_id", runID), slog.Any("error", err))
		return
	}
	slog.Info("rows mirrored to postgres", slog.String("run_id", runID), slog.Int("rows", n))
}

func serve(runner *harvest.Runner, c engine.Config) error {
	slog.Info("starting go_ytcomments", slog.String("port", mcpPort))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytcomments",
		Version: version,
	}, nil)

	commentserver.RegisterTools(server, &commentserver.Service{
		Runner:    runner,
		Ledger:    runner.Ledger,
		MaxVideos: c.MaxVideos,
	})
	slog.Info("tools registered", slog.Int("count", 3))

	return mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytcomments",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	})
}

func initEngine() engine.Config {
	c := engine.Config{
		ClientSecretsFile:    env.Str("CLIENT_SECRETS_FILE", "client_secret.json"),
		TokenFile:            env.Str("TOKEN_FILE", "token.json"),
		Scopes:               env.List("OAUTH_SCOPES", youtube.YoutubeForceSslScope),
		YouTubeAPIKey:        env.Str("YOUTUBE_API_KEY", ""),
		OutputDir:            env.Str("OUTPUT_DIR", ""),
		MaxVideos:            env.Int("MAX_VIDEOS", 50),
		APIRequestsPerSecond: env.Float("API_RPS", 5),
		APIMaxRetries:        env.Int("API_MAX_RETRIES", 2),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		LedgerPath:           env.Str("LEDGER_DB", ""),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		HTTPClient:           engine.NewAPIHTTPClient(env.Duration("HTTP_TIMEOUT", 30*time.Second)),
	}
	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 6*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}

// newYouTubeService prefers the API key when one is configured; otherwise
// it runs the OAuth flow against the stored credential.
func newYouTubeService(ctx context.Context, c engine.Config) (*youtube.Service, error) {
	if c.YouTubeAPIKey != "" {
		slog.Info("youtube: using API key")
		return auth.NewServiceWithAPIKey(ctx, c.YouTubeAPIKey, c.HTTPClient)
	}

	factory := &auth.ClientFactory{
		Store:      auth.NewFileStore(c.TokenFile),
		Prompter:   auth.NewConsolePrompter(),
		HTTPClient: c.HTTPClient,
	}
	svc, err := factory.NewService(ctx, c.ClientSecretsFile, c.Scopes, "youtube", "v3")
	if errors.Is(err, engine.ErrSecretsMissing) {
		return nil, fmt.Errorf("%w (set CLIENT_SECRETS_FILE or YOUTUBE_API_KEY)", err)
	}
	return svc, err
}

func initLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
