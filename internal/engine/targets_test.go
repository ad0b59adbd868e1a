package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTargets_Default(t *testing.T) {
	got, err := LoadTargets("")
	require.NoError(t, err)
	assert.Len(t, got.Channels, 3)
	assert.Len(t, got.Videos, 2)
	assert.Equal(t, "9ODGKI_VAmE", got.Videos[0].VideoID)
}

func TestLoadTargets_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
videos:
  - owner: Someone
    video_id: abc123
    title: "A: title with colon"
`), 0o600))

	got, err := LoadTargets(path)
	require.NoError(t, err)
	require.Len(t, got.Videos, 1)
	assert.Equal(t, VideoDescriptor{OwnerName: "Someone", VideoID: "abc123", Title: "A: title with colon"}, got.Videos[0])
	assert.Equal(t, DefaultTargets().Channels, got.Channels, "missing section keeps default")
}

func TestLoadTargets_Errors(t *testing.T) {
	_, err := LoadTargets(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: [unclosed"), 0o600))
	_, err = LoadTargets(path)
	assert.Error(t, err)
}
