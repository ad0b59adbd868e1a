package harvest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

func TestLedger_ListLimitAndEmpty(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "nested", "outcomes.db"))
	require.NoError(t, err)
	defer ledger.Close()
	ctx := context.Background()

	empty, err := ledger.List(ctx, OutcomesInput{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Outcomes)
	assert.Zero(t, empty.Total)

	for i := range 5 {
		res := engine.VideoResult{Video: engine.VideoDescriptor{VideoID: string(rune('a' + i))}, Rows: i}
		require.NoError(t, ledger.Record(ctx, "run1", ModeVideos, res))
	}

	got, err := ledger.List(ctx, OutcomesInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got.Outcomes, 2)
	assert.Equal(t, 5, got.Total)

	other, err := ledger.List(ctx, OutcomesInput{RunID: "run2"})
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestLedger_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcomes.db")
	ctx := context.Background()

	l1, err := OpenLedger(path)
	require.NoError(t, err)
	require.NoError(t, l1.Record(ctx, "r", ModeChannels, engine.VideoResult{
		Video: engine.VideoDescriptor{VideoID: "x"}, Reason: engine.ReasonCommentsDisabled, Error: "disabled",
	}))
	require.NoError(t, l1.Close())

	l2, err := OpenLedger(path)
	require.NoError(t, err)
	defer l2.Close()
	got, err := l2.List(ctx, OutcomesInput{Reason: "comments_disabled"})
	require.NoError(t, err)
	require.Len(t, got.Outcomes, 1)
	assert.Equal(t, engine.ReasonCommentsDisabled, got.Outcomes[0].Reason)
}
