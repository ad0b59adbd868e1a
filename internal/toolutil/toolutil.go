// Package toolutil provides shared input normalisation for go_ytcomments MCP tools.
package toolutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// MaxVideosCap bounds max_videos; each channel page costs 100 quota units.
const MaxVideosCap = 500

// OutputName cleans a caller-supplied file name: directory parts and a
// trailing .csv are dropped, empty falls back to def.
func OutputName(name, def string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(filepath.Clean("/" + name))
	name = strings.TrimSuffix(name, ".csv")
	if name == "" || name == "/" || name == "." {
		return def
	}
	return name
}

// ClampMaxVideos applies the default and the upper bound to max_videos.
func ClampMaxVideos(n, def int) int {
	if n <= 0 {
		n = def
	}
	return min(n, MaxVideosCap)
}

// ValidateVideos checks every descriptor carries a video ID.
func ValidateVideos(videos []engine.VideoDescriptor) error {
	if len(videos) == 0 {
		return errors.New("videos is required")
	}
	for i, v := range videos {
		if strings.TrimSpace(v.VideoID) == "" {
			return fmt.Errorf("videos[%d]: video_id is required", i)
		}
	}
	return nil
}

// ValidateChannels checks every channel carries an ID.
func ValidateChannels(channels []engine.Channel) error {
	if len(channels) == 0 {
		return errors.New("channels is required")
	}
	for i, c := range channels {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("channels[%d]: id is required", i)
		}
	}
	return nil
}
