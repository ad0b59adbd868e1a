package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrNoStatistics     = errors.New("youtube: video has no statistics")
	ErrCommentsDisabled = errors.New("youtube: comments disabled")
	ErrQuotaExceeded    = errors.New("youtube: quota exceeded")
	ErrVideoNotFound    = errors.New("youtube: video not found")
	ErrSecretsMissing   = errors.New("auth: client secrets file missing")
	ErrAuthAborted      = errors.New("auth: authorization aborted")
	ErrWrite            = errors.New("output: write failed")
)

// API error reasons reported in googleapi.ErrorItem.Reason.
var reasonSentinels = map[string]error{
	"commentsDisabled":   ErrCommentsDisabled,
	"quotaExceeded":      ErrQuotaExceeded,
	"dailyLimitExceeded": ErrQuotaExceeded,
	"videoNotFound":      ErrVideoNotFound,
}

// WrapAPIError annotates err with op and, when the API reported a known
// reason, with the matching sentinel so callers can use errors.Is.
func WrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		for _, item := range gerr.Errors {
			if sentinel, ok := reasonSentinels[item.Reason]; ok {
				return fmt.Errorf("%s: %w: %w", op, sentinel, err)
			}
		}
		if gerr.Code == http.StatusNotFound {
			return fmt.Errorf("%s: %w: %w", op, ErrVideoNotFound, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Classify maps a per-video error to a SkipReason.
func Classify(err error) SkipReason {
	if err == nil {
		return ReasonNone
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrCommentsDisabled):
		return ReasonCommentsDisabled
	case errors.Is(err, ErrQuotaExceeded):
		return ReasonQuotaExceeded
	case errors.Is(err, ErrVideoNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrNoStatistics):
		return ReasonNoStatistics
	case errors.Is(err, ErrWrite):
		return ReasonWriteError
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusForbidden {
			return ReasonForbidden
		}
		return ReasonAPIError
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ReasonNetwork
	}
	return ReasonUnknown
}
