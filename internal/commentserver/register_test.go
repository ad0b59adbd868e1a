package commentserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/harvest"
	"github.com/anatolykoptev/go_ytcomments/internal/engine/sources"
)

// stubSource returns one comment per video; videos with ID "broken" have no statistics.
type stubSource struct {
	lastLimit int
}

func (s *stubSource) TopVideos(_ context.Context, ch engine.Channel, limit int) ([]engine.VideoDescriptor, error) {
	s.lastLimit = limit
	return []engine.VideoDescriptor{
		{OwnerName: ch.Name, VideoID: "ok1"},
		{OwnerName: ch.Name, VideoID: "broken"},
	}, nil
}

func (s *stubSource) Statistics(_ context.Context, id string) (engine.VideoStatistics, error) {
	if id == "broken" {
		return engine.VideoStatistics{}, engine.ErrNoStatistics
	}
	return engine.VideoStatistics{ViewCount: "1", CommentCount: "1", LikeCount: "0", DislikeCount: "0"}, nil
}

func (s *stubSource) Comments(_ context.Context, q sources.CommentQuery) (sources.Comments, error) {
	return sources.Comments{Texts: []string{"hi " + q.VideoID}, Replies: []int64{0}, Likes: []int64{1}}, nil
}

func newService(t *testing.T) (*Service, *stubSource) {
	t.Helper()
	ledger, err := harvest.OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	src := &stubSource{}
	return &Service{
		Runner:    &harvest.Runner{Source: src, OutputDir: t.TempDir(), Ledger: ledger},
		Ledger:    ledger,
		MaxVideos: 50,
	}, src
}

func TestVideoComments(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.VideoComments(ctx, engine.VideoCommentsInput{})
	assert.Error(t, err)

	out, err := s.VideoComments(ctx, engine.VideoCommentsInput{
		Videos: []engine.VideoDescriptor{{OwnerName: "Dev Ed", VideoID: "ok1", Title: "t"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Rows)
	assert.Equal(t, DefaultVideosOutput+".csv", filepath.Base(out.OutputPath))

	_, err = s.VideoComments(ctx, engine.VideoCommentsInput{
		Videos:     []engine.VideoDescriptor{{VideoID: "ok1"}, {VideoID: "broken"}},
		OutputName: "../escape.csv",
	})
	require.ErrorIs(t, err, engine.ErrNoStatistics)
}

func TestChannelComments(t *testing.T) {
	s, src := newService(t)
	ctx := context.Background()

	out, err := s.ChannelComments(ctx, engine.ChannelCommentsInput{
		Channels: []engine.Channel{{Name: "Dev Ed", ID: "UClb90NQQcskPUGDIXsQEz5Q"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, src.lastLimit)
	assert.Equal(t, 2, out.Videos)
	assert.Equal(t, 1, out.Skipped)
	assert.Equal(t, DefaultChannelsOutput+".csv", filepath.Base(out.OutputPath))

	skipped, err := s.Outcomes(ctx, harvest.OutcomesInput{Reason: "no_statistics"})
	require.NoError(t, err)
	require.Len(t, skipped.Outcomes, 1)
	assert.Equal(t, "broken", skipped.Outcomes[0].VideoID)
}

func TestOutcomesDisabled(t *testing.T) {
	s := &Service{}
	_, err := s.Outcomes(context.Background(), harvest.OutcomesInput{})
	assert.Error(t, err)
}

func TestRegisterTools(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "go_ytcomments", Version: "test"}, nil)
	RegisterTools(server, s)

	clientT, serverT := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"channel_comments", "harvest_outcomes", "video_comments"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "channel_comments",
		Arguments: map[string]any{
			"channels":   []map[string]any{{"name": "Dev Ed", "id": "UC1"}},
			"max_videos": 5,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out engine.HarvestOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, harvest.ModeChannels, out.Mode)
	assert.Equal(t, 1, out.Rows)
}
