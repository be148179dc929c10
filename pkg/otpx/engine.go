package otpx

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultPeriod is the RFC 6238 standard time-window length in seconds.
	DefaultPeriod = 30

	// DefaultTolerance accepts codes from the previous, current and next
	// window to absorb clock drift between authenticator and server.
	DefaultTolerance = 1

	// MaxTolerance caps the drift window. Anything wider than ±2 windows
	// materially weakens a six-digit code against online guessing.
	MaxTolerance = 2

	// Digits is the code length. Fixed at six, which is what every common
	// authenticator app produces.
	Digits = 6
)

var (
	// ErrInvalidSecretEncoding reports a secret that is not valid RFC 4648
	// Base32. Fatal to the current operation, never retried.
	ErrInvalidSecretEncoding = errors.New("otpx: secret is not valid base32")

	// ErrCryptoBackend reports an unexpected failure in the underlying
	// HMAC/random primitives. Transient, safe to retry.
	ErrCryptoBackend = errors.New("otpx: crypto backend failure")

	// ErrNoMatch reports that the candidate code matched no tolerated window.
	ErrNoMatch = errors.New("otpx: code did not match any tolerated window")

	// ErrToleranceTooWide rejects engines configured beyond MaxTolerance.
	ErrToleranceTooWide = errors.New("otpx: tolerance must be between 0 and 2 windows")
)

// Engine generates and verifies six-digit TOTP codes per RFC 6238, using
// HMAC-SHA1 dynamic truncation per RFC 4226. The engine is stateless and
// safe for concurrent use; all shared-state concerns (replay, rate limits)
// live with the caller.
type Engine struct {
	period    int64
	tolerance int
}

// NewEngine returns an engine for the given window length and drift
// tolerance. A period <= 0 selects DefaultPeriod. Tolerance is the number
// of windows accepted either side of the current one and must not exceed
// MaxTolerance.
func NewEngine(period int64, tolerance int) (*Engine, error) {
	if period <= 0 {
		period = DefaultPeriod
	}
	if tolerance < 0 || tolerance > MaxTolerance {
		return nil, ErrToleranceTooWide
	}
	return &Engine{period: period, tolerance: tolerance}, nil
}

// Period returns the window length in seconds.
func (e *Engine) Period() int64 { return e.period }

// Tolerance returns the number of windows accepted either side of the
// current one.
func (e *Engine) Tolerance() int { return e.tolerance }

// Window returns the time-window index for t: floor(unixSeconds / period).
func (e *Engine) Window(t time.Time) int64 {
	return t.Unix() / e.period
}

// GenerateAt computes the code for the window containing t.
func (e *Engine) GenerateAt(secret string, t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(NormalizeSecret(secret), t, e.opts())
	if err != nil {
		return "", mapOTPError(err)
	}
	return code, nil
}

// VerifyAt checks candidate against every tolerated window around t and
// returns the index of the first window that matched. Comparison is
// constant-time per window. Returns ErrNoMatch when no window produced the
// candidate.
func (e *Engine) VerifyAt(secret, candidate string, t time.Time) (int64, error) {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) != Digits {
		return 0, ErrNoMatch
	}

	base := e.Window(t)
	for k := -e.tolerance; k <= e.tolerance; k++ {
		at := t.Add(time.Duration(int64(k)*e.period) * time.Second)
		want, err := e.GenerateAt(secret, at)
		if err != nil {
			return 0, err
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(candidate)) == 1 {
			return base + int64(k), nil
		}
	}
	return 0, ErrNoMatch
}

func (e *Engine) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(e.period),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// mapOTPError folds library errors into the engine's taxonomy. Base32
// decode failures are the only expected error class; everything else is
// treated as a backend fault.
func mapOTPError(err error) error {
	if errors.Is(err, otp.ErrValidateSecretInvalidBase32) {
		return ErrInvalidSecretEncoding
	}
	return fmt.Errorf("%w: %v", ErrCryptoBackend, err)
}
