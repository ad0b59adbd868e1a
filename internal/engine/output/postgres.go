package output

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var copyColumns = []string{
	"run_id", "owner", "video_id", "title",
	"views", "comment_count", "video_likes", "video_dislikes",
	"comment_replies", "comment_likes", "comment",
}

// PostgresSink mirrors appended rows into the comment_rows table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// ConnectPostgres creates a pgx pool and applies the embedded schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresSink, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 4
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresSink{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("postgres sink connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresSink) Close() {
	s.pool.Close()
}

func (s *PostgresSink) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
		slog.Debug("migration applied", slog.String("file", entry.Name()))
	}
	return nil
}

// Append implements Sink with a single COPY per batch.
func (s *PostgresSink) Append(ctx context.Context, runID string, rows []engine.OutputRow) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"comment_rows"}, copyColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{
				runID, r.Owner, r.VideoID, r.Title,
				r.Views, r.CommentCount, r.VideoLikes, r.VideoDislikes,
				r.Replies, r.CommentLikes, r.Comment,
			}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy comment_rows: %w", err)
	}
	slog.Debug("postgres rows copied", slog.String("run_id", runID), slog.Int64("rows", n))
	return nil
}

// CountRun returns how many rows were stored for runID.
func (s *PostgresSink) CountRun(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comment_rows WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comment_rows: %w", err)
	}
	return n, nil
}
