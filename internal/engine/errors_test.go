package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAPIError(t *testing.T) {
	err := WrapAPIError("comment threads", apiErr(403, "commentsDisabled"))
	assert.ErrorIs(t, err, ErrCommentsDisabled)
	assert.Contains(t, err.Error(), "comment threads")

	err = WrapAPIError("statistics", apiErr(404, ""))
	assert.ErrorIs(t, err, ErrVideoNotFound)

	plain := errors.New("boom")
	err = WrapAPIError("search", plain)
	assert.ErrorIs(t, err, plain)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)

	assert.NoError(t, WrapAPIError("noop", nil))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SkipReason
	}{
		{"nil", nil, ReasonNone},
		{"comments disabled", WrapAPIError("c", apiErr(403, "commentsDisabled")), ReasonCommentsDisabled},
		{"quota", WrapAPIError("c", apiErr(403, "quotaExceeded")), ReasonQuotaExceeded},
		{"daily limit", WrapAPIError("c", apiErr(403, "dailyLimitExceeded")), ReasonQuotaExceeded},
		{"not found", WrapAPIError("c", apiErr(404, "videoNotFound")), ReasonNotFound},
		{"no statistics", fmt.Errorf("stats abc: %w", ErrNoStatistics), ReasonNoStatistics},
		{"forbidden", apiErr(403, "forbidden"), ReasonForbidden},
		{"server error", apiErr(500, ""), ReasonAPIError},
		{"write", fmt.Errorf("%w: disk full", ErrWrite), ReasonWriteError},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, ReasonNetwork},
		{"canceled", fmt.Errorf("search: %w", context.Canceled), ReasonCanceled},
		{"unknown", errors.New("weird"), ReasonUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
