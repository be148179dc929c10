package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCodeMismatch means the code matched no tolerated time window.
	// Recorded as a rate-limit failure.
	ErrCodeMismatch = errors.New("code did not match")

	// ErrReplayedToken means the code was valid but already consumed.
	// Counts as a failure for rate limiting but is logged distinctly since
	// it may indicate code interception.
	ErrReplayedToken = errors.New("code already used in this window")

	// ErrAlreadyEnabled rejects enrollment for a principal that already has
	// a committed factor. Disable first, then re-enroll.
	ErrAlreadyEnabled = errors.New("two-factor already enabled")

	// ErrNotEnabled rejects challenges for principals with no committed
	// factor.
	ErrNotEnabled = errors.New("two-factor not enabled")

	// ErrNoPendingSetup means ConfirmSetup found no live setup session.
	ErrNoPendingSetup = errors.New("no pending setup session")

	// Backup-code path outcomes. The HTTP boundary collapses all three into
	// one generic message so callers cannot probe which one occurred.
	ErrBackupCodeInvalidFormat = errors.New("backup code format invalid")
	ErrBackupCodeAlreadyUsed   = errors.New("backup code already used")
	ErrBackupCodeNotFound      = errors.New("backup code not recognised")
)

// RateLimitedError means the principal is locked out; no verification was
// attempted at all. RetryAfter is the remaining lockout duration.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Second))
}

// IsRateLimited extracts a RateLimitedError from an error chain.
func IsRateLimited(err error) (*RateLimitedError, bool) {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return rle, true
	}
	return nil, false
}
