// Package harvest drives the two run modes: an explicit video list, and
// the most-viewed videos of a set of channels.
package harvest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/output"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
)

// Run modes, as recorded in the ledger and HarvestOutput.Mode.
const (
	ModeVideos   = "videos"
	ModeChannels = "channels"
)

// maxErrorRunes caps the error text kept per video result.
const maxErrorRunes = 500

// Source is the subset of sources.Client the runner needs.
type Source interface {
	TopVideos(ctx context.Context, ch engine.Channel, limit int) ([]engine.VideoDescriptor, error)
	Statistics(ctx context.Context, videoID string) (engine.VideoStatistics, error)
	Comments(ctx context.Context, q sources.CommentQuery) (sources.Comments, error)
}

// Runner wires a Source to the CSV output, optional mirror sinks and an
// optional outcome ledger.
type Runner struct {
	Source    Source
	OutputDir string
	Mirrors   []output.Sink // e.g. *output.PostgresSink; failures are logged, not fatal
	Ledger    *Ledger       // nil = outcomes not recorded
}

// RunVideos harvests each listed video in order. The first failure stops
// the run and is returned together with the results gathered so far.
func (r *Runner) RunVideos(ctx context.Context, videos []engine.VideoDescriptor, name string) (*engine.HarvestOutput, error) {
	w := output.NewCSVWriter(r.OutputDir, name)
	out := r.begin(ModeVideos, w)
	if err := w.WriteHeader(); err != nil {
		return out, err
	}

	slog.Info("harvesting videos", slog.String("run_id", out.RunID), slog.Int("videos", len(videos)))
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := r.harvestVideo(ctx, w, out.RunID, v)
		r.record(ctx, out, res)
		if err != nil {
			return out, fmt.Errorf("video %s: %w", v.VideoID, err)
		}
	}
	return out, nil
}

// RunChannels resolves each channel to its top limit videos and harvests
// them. Per-video failures are recorded and skipped; a failed channel
// lookup skips the channel. Only a header write failure or cancellation
// ends the run early with an error.
func (r *Runner) RunChannels(ctx context.Context, channels []engine.Channel, name string, limit int) (*engine.HarvestOutput, error) {
	w := output.NewCSVWriter(r.OutputDir, name)
	out := r.begin(ModeChannels, w)
	if err := w.WriteHeader(); err != nil {
		return out, err
	}

	for i, ch := range channels {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		slog.Info("harvesting channel",
			slog.String("run_id", out.RunID), slog.Int("n", i+1), slog.String("channel", ch.Name))

		videos, err := r.Source.TopVideos(ctx, ch, limit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			out.ChannelsSkipped++
			slog.Warn("channel lookup failed, skipping",
				slog.String("channel", ch.Name), slog.String("channel_id", ch.ID),
				slog.String("reason", string(engine.Classify(err))), slog.Any("error", err))
			continue
		}

		for _, v := range videos {
			res, _ := r.harvestVideo(ctx, w, out.RunID, v)
			r.record(ctx, out, res)
			if res.Reason == engine.ReasonCanceled {
				return out, ctx.Err()
			}
		}
	}
	return out, nil
}

func (r *Runner) begin(mode string, w *output.CSVWriter) *engine.HarvestOutput {
	return &engine.HarvestOutput{
		RunID:      newRunID(),
		Mode:       mode,
		OutputPath: w.Path(),
		Results:    []engine.VideoResult{},
	}
}

// harvestVideo fetches comments then statistics for v and appends its rows.
func (r *Runner) harvestVideo(ctx context.Context, w *output.CSVWriter, runID string, v engine.VideoDescriptor) (engine.VideoResult, error) {
	res := engine.VideoResult{Video: v}
	slog.Info("processing video", slog.String("owner", v.OwnerName), slog.String("title", v.Title))

	var rows []engine.OutputRow
	err := engine.TrackOperation(ctx, "video "+v.VideoID, func(ctx context.Context) error {
		var err error
		if rows, err = r.fetchRows(ctx, v); err != nil {
			return err
		}
		return w.Append(ctx, runID, rows)
	})
	if err != nil {
		res.Reason = engine.Classify(err)
		res.Error = engine.TruncateRunes(err.Error(), maxErrorRunes, "...")
		engine.IncrVideosSkipped()
		slog.Warn("video skipped",
			slog.String("video_id", v.VideoID), slog.String("reason", string(res.Reason)), slog.Any("error", err))
		return res, err
	}

	res.Rows = len(rows)
	engine.IncrVideosProcessed()
	for _, m := range r.Mirrors {
		if err := m.Append(ctx, runID, rows); err != nil {
			slog.Warn("mirror append failed", slog.String("video_id", v.VideoID), slog.Any("error", err))
		}
	}
	return res, nil
}

func (r *Runner) fetchRows(ctx context.Context, v engine.VideoDescriptor) ([]engine.OutputRow, error) {
	comments, err := r.Source.Comments(ctx, sources.CommentQuery{VideoID: v.VideoID})
	if err != nil {
		return nil, err
	}
	stats, err := r.Source.Statistics(ctx, v.VideoID)
	if err != nil {
		return nil, err
	}
	return BuildRows(v, stats, comments.Records()), nil
}

func (r *Runner) record(ctx context.Context, out *engine.HarvestOutput, res engine.VideoResult) {
	out.Add(res)
	if r.Ledger == nil {
		return
	}
	// A canceled run still gets its last outcome recorded.
	if err := r.Ledger.Record(context.WithoutCancel(ctx), out.RunID, out.Mode, res); err != nil {
		slog.Warn("ledger record failed", slog.String("video_id", res.Video.VideoID), slog.Any("error", err))
	}
}

// BuildRows flattens one video and its comments into output rows. Video
// columns repeat on every row; line breaks in comment text become spaces.
func BuildRows(v engine.VideoDescriptor, stats engine.VideoStatistics, comments []engine.CommentRecord) []engine.OutputRow {
	rows := make([]engine.OutputRow, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, engine.OutputRow{
			Owner:         v.OwnerName,
			VideoID:       v.VideoID,
			Title:         v.Title,
			Views:         stats.ViewCount,
			CommentCount:  stats.CommentCount,
			VideoLikes:    stats.LikeCount,
			VideoDislikes: stats.DislikeCount,
			Replies:       c.ReplyCount,
			CommentLikes:  c.LikeCount,
			Comment:       engine.FlattenNewlines(c.Text),
		})
	}
	return rows
}

func newRunID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return time.Now().UTC().Format("20060102T150405") + "-" + hex.EncodeToString(b[:])
}
