// Package sources wraps the three YouTube Data API v3 reads the harvester
// needs: channel search, video statistics and comment threads.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/time/rate"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// searchPageSize is the largest page search.list accepts.
const searchPageSize = 50

// Client issues paced, retried calls against one YouTube service handle.
type Client struct {
	svc     *youtube.Service
	limiter *rate.Limiter
	retry   engine.RetryConfig
}

// NewClient paces calls at rps requests per second (<= 0 = unlimited) and
// retries with the engine's configured retry budget.
func NewClient(svc *youtube.Service, rps float64) *Client {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		svc:     svc,
		limiter: rate.NewLimiter(limit, 1),
		retry:   engine.RetryConfigFromCfg(),
	}
}

// WithRetry overrides the retry policy.
func (c *Client) WithRetry(rc engine.RetryConfig) *Client {
	c.retry = rc
	return c
}

// call waits for a limiter slot before every attempt, including retries.
func call[T any](ctx context.Context, c *Client, fn func() (T, error)) (T, error) {
	return engine.RetryDo(ctx, c.retry, func() (T, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		return fn()
	})
}

// TopVideos returns up to limit videos of ch ordered by view count, highest
// first. Pages are requested until the token runs out or more than limit
// videos have been collected; the result is cut to limit and never padded.
func (c *Client) TopVideos(ctx context.Context, ch engine.Channel, limit int) ([]engine.VideoDescriptor, error) {
	if limit <= 0 {
		return []engine.VideoDescriptor{}, nil
	}

	key := engine.CacheKey("top_videos", ch.ID, strconv.Itoa(limit))
	if cached, ok := engine.CacheLoadJSON[[]engine.VideoDescriptor](ctx, key); ok {
		// Owner name is a local label, not part of the API answer.
		for i := range cached {
			cached[i].OwnerName = ch.Name
		}
		return cached, nil
	}

	var (
		videos []engine.VideoDescriptor
		token  string
	)
	for {
		req := c.svc.Search.List([]string{"snippet"}).
			ChannelId(ch.ID).
			Order("viewCount").
			SafeSearch("none").
			Type("video").
			MaxResults(searchPageSize).
			Context(ctx)
		if token != "" {
			req = req.PageToken(token)
		}

		resp, err := call(ctx, c, func() (*youtube.SearchListResponse, error) {
			engine.IncrSearchRequests()
			return req.Do()
		})
		if err != nil {
			return nil, engine.WrapAPIError(fmt.Sprintf("search channel %s", ch.ID), err)
		}

		for _, item := range resp.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			v := engine.VideoDescriptor{OwnerName: ch.Name, VideoID: item.Id.VideoId}
			if item.Snippet != nil {
				v.Title = item.Snippet.Title
			}
			videos = append(videos, v)
		}

		token = resp.NextPageToken
		if token == "" || len(videos) > limit {
			break
		}
	}

	if len(videos) > limit {
		videos = videos[:limit]
	}
	if videos == nil {
		videos = []engine.VideoDescriptor{}
	}

	slog.Debug("channel videos resolved",
		slog.String("channel", ch.Name), slog.String("channel_id", ch.ID), slog.Int("videos", len(videos)))
	engine.CacheStoreJSON(ctx, key, videos)
	return videos, nil
}

// Statistics returns the aggregate counters of videoID. A video that is
// deleted, private or otherwise has no statistics yields engine.ErrNoStatistics.
func (c *Client) Statistics(ctx context.Context, videoID string) (engine.VideoStatistics, error) {
	req := c.svc.Videos.List([]string{"statistics"}).Id(videoID).Context(ctx)
	resp, err := call(ctx, c, func() (*youtube.VideoListResponse, error) {
		engine.IncrStatisticsRequests()
		return req.Do()
	})
	if err != nil {
		return engine.VideoStatistics{}, engine.WrapAPIError(fmt.Sprintf("statistics %s", videoID), err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Statistics == nil {
		return engine.VideoStatistics{}, fmt.Errorf("statistics %s: %w", videoID, engine.ErrNoStatistics)
	}

	s := resp.Items[0].Statistics
	stats := engine.VideoStatistics{
		ViewCount:    strconv.FormatUint(s.ViewCount, 10),
		CommentCount: strconv.FormatUint(s.CommentCount, 10),
		LikeCount:    strconv.FormatUint(s.LikeCount, 10),
		DislikeCount: strconv.FormatUint(s.DislikeCount, 10),
	}
	slog.Info("video statistics",
		slog.String("video_id", videoID),
		slog.String("views", stats.ViewCount),
		slog.String("comments", stats.CommentCount),
		slog.String("likes", stats.LikeCount),
		slog.String("dislikes", stats.DislikeCount))
	return stats, nil
}

// CommentQuery parameterises a commentThreads.list walk.
type CommentQuery struct {
	VideoID    string
	Part       string // default "snippet"
	TextFormat string // default "plainText"
}

// Comments holds the top-level comments of one video as three parallel
// slices of equal length.
type Comments struct {
	Texts   []string
	Replies []int64
	Likes   []int64
}

// Len returns the number of comments.
func (c Comments) Len() int { return len(c.Texts) }

// Records zips the parallel slices.
func (c Comments) Records() []engine.CommentRecord {
	out := make([]engine.CommentRecord, len(c.Texts))
	for i := range c.Texts {
		out[i] = engine.CommentRecord{Text: c.Texts[i], ReplyCount: c.Replies[i], LikeCount: c.Likes[i]}
	}
	return out
}

func (c *Comments) add(text string, replies, likes int64) {
	c.Texts = append(c.Texts, text)
	c.Replies = append(c.Replies, replies)
	c.Likes = append(c.Likes, likes)
}

// Comments walks every page of top-level comment threads on q.VideoID.
// Disabled comments surface as engine.ErrCommentsDisabled.
func (c *Client) Comments(ctx context.Context, q CommentQuery) (Comments, error) {
	if q.Part == "" {
		q.Part = "snippet"
	}
	if q.TextFormat == "" {
		q.TextFormat = "plainText"
	}

	var (
		out   Comments
		token string
		pages int
	)
	for {
		req := c.svc.CommentThreads.List([]string{q.Part}).
			VideoId(q.VideoID).
			TextFormat(q.TextFormat).
			Context(ctx)
		if token != "" {
			req = req.PageToken(token)
		}

		resp, err := call(ctx, c, func() (*youtube.CommentThreadListResponse, error) {
			engine.IncrCommentThreadRequests()
			return req.Do()
		})
		if err != nil {
			return Comments{}, engine.WrapAPIError(fmt.Sprintf("comments %s", q.VideoID), err)
		}
		pages++

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			top := item.Snippet.TopLevelComment.Snippet
			out.add(top.TextDisplay, item.Snippet.TotalReplyCount, top.LikeCount)
		}

		token = resp.NextPageToken
		if token == "" {
			break
		}
	}

	slog.Debug("comments fetched",
		slog.String("video_id", q.VideoID), slog.Int("pages", pages), slog.Int("comments", out.Len()))
	return out, nil
}
