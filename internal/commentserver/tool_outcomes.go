package commentserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytcomments/internal/engine/harvest"
)

func registerHarvestOutcomes(server *mcp.Server, s *Service) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "harvest_outcomes",
		Description: "List recorded per-video outcomes from past runs (SQLite ledger), newest first. Filter by run_id or reason: ok, comments_disabled, quota_exceeded, not_found, no_statistics, forbidden, network, api_error, write_error, canceled, unknown.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input harvest.OutcomesInput) (*mcp.CallToolResult, *harvest.OutcomesResult, error) {
		result, err := s.Outcomes(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, result, nil
	})
}
