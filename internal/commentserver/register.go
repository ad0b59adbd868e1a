// Package commentserver exposes comment harvesting as MCP tools.
package commentserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/harvest"
	"github.com/anatolykoptev/go_ytcomments/internal/toolutil"
)

// Default output names, matching the batch modes.
const (
	DefaultVideosOutput   = "singlevideos"
	DefaultChannelsOutput = "Filename"
)

// Service backs the tools. Runs are serialised: two runs writing the same
// output file would interleave rows.
type Service struct {
	Runner    *harvest.Runner
	Ledger    *harvest.Ledger // nil = harvest_outcomes reports the ledger as disabled
	MaxVideos int

	mu sync.Mutex
}

// RegisterTools registers video_comments, channel_comments and harvest_outcomes.
func RegisterTools(server *mcp.Server, s *Service) {
	registerVideoComments(server, s)
	registerChannelComments(server, s)
	registerHarvestOutcomes(server, s)
}

// VideoComments runs the explicit-list mode.
func (s *Service) VideoComments(ctx context.Context, input engine.VideoCommentsInput) (engine.HarvestOutput, error) {
	if err := toolutil.ValidateVideos(input.Videos); err != nil {
		return engine.HarvestOutput{}, err
	}
	name := toolutil.OutputName(input.OutputName, DefaultVideosOutput)

	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.Runner.RunVideos(ctx, input.Videos, name)
	if err != nil {
		return engine.HarvestOutput{}, fmt.Errorf("video_comments (run %s, %d rows written): %w", out.RunID, out.Rows, err)
	}
	return *out, nil
}

// ChannelComments runs the channel mode.
func (s *Service) ChannelComments(ctx context.Context, input engine.ChannelCommentsInput) (engine.HarvestOutput, error) {
	if err := toolutil.ValidateChannels(input.Channels); err != nil {
		return engine.HarvestOutput{}, err
	}
	name := toolutil.OutputName(input.OutputName, DefaultChannelsOutput)
	limit := toolutil.ClampMaxVideos(input.MaxVideos, s.MaxVideos)

	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.Runner.RunChannels(ctx, input.Channels, name, limit)
	if err != nil {
		return engine.HarvestOutput{}, fmt.Errorf("channel_comments (run %s): %w", out.RunID, err)
	}
	return *out, nil
}

// Outcomes lists ledger entries.
func (s *Service) Outcomes(ctx context.Context, input harvest.OutcomesInput) (*harvest.OutcomesResult, error) {
	if s.Ledger == nil {
		return nil, errors.New("outcome ledger disabled (set LEDGER_DB)")
	}
	return s.Ledger.List(ctx, input)
}
