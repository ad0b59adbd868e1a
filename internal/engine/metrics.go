package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests        atomic.Int64
	CommentThreadRequests atomic.Int64
	StatisticsRequests    atomic.Int64
	VideosProcessed       atomic.Int64
	VideosSkipped         atomic.Int64
	RowsWritten           atomic.Int64
	Retries               atomic.Int64
}

var metricKeys = []string{
	"search_requests", "comment_thread_requests", "statistics_requests",
	"videos_processed", "videos_skipped", "rows_written",
	"retries",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":         metrics.SearchRequests.Load(),
		"comment_thread_requests": metrics.CommentThreadRequests.Load(),
		"statistics_requests":     metrics.StatisticsRequests.Load(),
		"videos_processed":        metrics.VideosProcessed.Load(),
		"videos_skipped":          metrics.VideosSkipped.Load(),
		"rows_written":            metrics.RowsWritten.Load(),
		"retries":                 metrics.Retries.Load(),
		"cache_hits":              hits,
		"cache_misses":            misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// LogMetrics writes the current counters at Info level.
func LogMetrics() {
	m := GetMetrics()
	attrs := make([]any, 0, len(metricKeys))
	for _, k := range metricKeys {
		attrs = append(attrs, slog.Int64(k, m[k]))
	}
	slog.Info("metrics", attrs...)
}

// Incrementors for sources/ and harvest/ sub-packages.
func IncrSearchRequests()        { metrics.SearchRequests.Add(1) }
func IncrCommentThreadRequests() { metrics.CommentThreadRequests.Add(1) }
func IncrStatisticsRequests()    { metrics.StatisticsRequests.Add(1) }
func IncrVideosProcessed()       { metrics.VideosProcessed.Add(1) }
func IncrVideosSkipped()         { metrics.VideosSkipped.Add(1) }
func AddRowsWritten(n int)       { metrics.RowsWritten.Add(int64(n)) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 30*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
