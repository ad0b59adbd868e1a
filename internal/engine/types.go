package engine

// --- Harvest targets ---

// Channel is a named YouTube channel to resolve into its most-viewed videos.
type Channel struct {
	Name string `json:"name" yaml:"name" jsonschema:"Display name written into the owner column"`
	ID   string `json:"id" yaml:"id" jsonschema:"YouTube channel ID (UC...)"`
}

// VideoDescriptor identifies one video to harvest. Built from a static list
// or from channel lookup results; never mutated afterwards.
type VideoDescriptor struct {
	OwnerName string `json:"owner" yaml:"owner" jsonschema:"Owner/streamer name written into the first column"`
	VideoID   string `json:"video_id" yaml:"video_id" jsonschema:"YouTube video ID"`
	Title     string `json:"title" yaml:"title" jsonschema:"Video title"`
}

// --- Fetched data ---

// VideoStatistics holds the aggregate counters of a video, rendered as
// decimal strings exactly as they are written to the output file.
type VideoStatistics struct {
	ViewCount    string `json:"view_count"`
	CommentCount string `json:"comment_count"`
	LikeCount    string `json:"like_count"`
	DislikeCount string `json:"dislike_count"`
}

// CommentRecord is one top-level comment thread.
type CommentRecord struct {
	Text       string `json:"text"`
	ReplyCount int64  `json:"reply_count"`
	LikeCount  int64  `json:"like_count"`
}

// OutputRow is the flattened 10-column record appended to the output file.
// The first seven fields are identical for every comment of the same video.
type OutputRow struct {
	Owner         string
	VideoID       string
	Title         string
	Views         string
	CommentCount  string
	VideoLikes    string
	VideoDislikes string
	Replies       int64
	CommentLikes  int64
	Comment       string
}

// --- Outcomes ---

// SkipReason classifies why a video produced no rows.
type SkipReason string

const (
	ReasonNone             SkipReason = ""
	ReasonCommentsDisabled SkipReason = "comments_disabled"
	ReasonQuotaExceeded    SkipReason = "quota_exceeded"
	ReasonNotFound         SkipReason = "not_found"
	ReasonNoStatistics     SkipReason = "no_statistics"
	ReasonForbidden        SkipReason = "forbidden"
	ReasonNetwork          SkipReason = "network"
	ReasonAPIError         SkipReason = "api_error"
	ReasonWriteError       SkipReason = "write_error"
	ReasonCanceled         SkipReason = "canceled"
	ReasonUnknown          SkipReason = "unknown"
)

// VideoResult is the typed outcome of one per-video fetch+write step.
type VideoResult struct {
	Video  VideoDescriptor `json:"video"`
	Rows   int             `json:"rows"`
	Reason SkipReason      `json:"reason,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// OK reports whether the video was written.
func (r VideoResult) OK() bool { return r.Reason == ReasonNone }

// --- MCP tool I/O ---

// VideoCommentsInput is the input for the video_comments tool.
type VideoCommentsInput struct {
	Videos     []VideoDescriptor `json:"videos" jsonschema:"Videos to harvest (owner, video_id, title)"`
	OutputName string            `json:"output_name,omitempty" jsonschema:"Output file name without .csv (default: singlevideos)"`
}

// ChannelCommentsInput is the input for the channel_comments tool.
type ChannelCommentsInput struct {
	Channels   []Channel `json:"channels" jsonschema:"Channels to harvest (name, id)"`
	OutputName string    `json:"output_name,omitempty" jsonschema:"Output file name without .csv (default: Filename)"`
	MaxVideos  int       `json:"max_videos,omitempty" jsonschema:"Top-N most viewed videos per channel (default: 50)"`
}

// HarvestOutput summarises a finished run.
type HarvestOutput struct {
	RunID      string `json:"run_id"`
	Mode       string `json:"mode"`
	OutputPath string `json:"output_path"`
	Videos     int    `json:"videos"`
	Skipped    int    `json:"skipped"`
	Rows       int    `json:"rows"`

	// ChannelsSkipped counts channels whose video lookup failed.
	ChannelsSkipped int           `json:"channels_skipped,omitempty"`
	Results         []VideoResult `json:"results"`
}

// Add folds one per-video result into the totals.
func (o *HarvestOutput) Add(r VideoResult) {
	o.Results = append(o.Results, r)
	o.Videos++
	o.Rows += r.Rows
	if !r.OK() {
		o.Skipped++
	}
}
