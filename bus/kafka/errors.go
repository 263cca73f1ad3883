package kafka

import (
	"context"
	"errors"
	"strings"
)

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"broker not available",
	"leader not available",
	"not leader for partition",
	"not enough replicas",
	"request timed out",
	"temporary",
}

// IsRetryableError reports whether a failed write is worth another attempt.
// Context errors and permanent broker rejections (message too large, unknown
// topic, authorization) are not.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
