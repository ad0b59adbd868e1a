//go:build integration

package output

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_PostgresSinkAppend(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sink, err := ConnectPostgres(ctx, url)
	require.NoError(t, err)
	defer sink.Close()

	runID := fmt.Sprintf("it-%d", time.Now().UnixNano())
	require.NoError(t, sink.Append(ctx, runID, sampleRows()))
	require.NoError(t, sink.Append(ctx, runID, nil))

	n, err := sink.CountRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
