package commentserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

func registerVideoComments(server *mcp.Server, s *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_comments",
		Description: "Fetch every top-level comment plus view/comment/like/dislike counters for an explicit list of YouTube videos and write them to <output_name>.csv (one row per comment). Stops at the first video that fails. Returns the run summary with per-video results.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoCommentsInput) (*mcp.CallToolResult, engine.HarvestOutput, error) {
		out, err := s.VideoComments(ctx, input)
		if err != nil {
			return nil, engine.HarvestOutput{}, err
		}
		return nil, out, nil
	})
}

func registerChannelComments(server *mcp.Server, s *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_comments",
		Description: "Resolve each channel to its most viewed videos (max_videos per channel) and write all their top-level comments with video counters to <output_name>.csv. Videos that fail (comments disabled, quota, missing statistics) are skipped and reported with a typed reason.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelCommentsInput) (*mcp.CallToolResult, engine.HarvestOutput, error) {
		out, err := s.ChannelComments(ctx, input)
		if err != nil {
			return nil, engine.HarvestOutput{}, err
		}
		return nil, out, nil
	})
}
