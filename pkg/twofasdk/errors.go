package twofasdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harborauth/twofa/pkg/httpx"
)

// Machine-readable error codes. Verification failures deliberately share one
// code so callers (and attackers probing the API) cannot tell a mismatch
// from a replay or a spent backup code.
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeInvalidCode    = "invalid_code"
	ErrorCodeRateLimited    = "rate_limited"
	ErrorCodeAlreadyEnabled = "already_enabled"
	ErrorCodeNotEnabled     = "not_enabled"
	ErrorCodeNoPendingSetup = "no_pending_setup"
	ErrorCodeServerError    = "server_error"
)

// APIError represents an error response from the service. It implements the
// error interface and is used both by the server (to write responses) and by
// the SDK client (to represent what came back).
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "invalid_code")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`

	// RetryAfter is populated for rate_limited errors from the Retry-After
	// header.
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(e.RetryAfter.Seconds())+1))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned for malformed or incomplete requests.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCode is the single user-visible verification failure. It
	// covers code mismatches, replays and every backup-code failure kind.
	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCode,
		Description: "the code is incorrect",
	}

	// ErrBackupCodeIncorrect is ErrInvalidCode's wording for the recovery
	// endpoint.
	ErrBackupCodeIncorrect = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCode,
		Description: "the backup code is incorrect",
	}

	// ErrAlreadyEnabled is returned when enrollment is attempted for a
	// principal with a committed factor.
	ErrAlreadyEnabled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeAlreadyEnabled,
		Description: "two-factor authentication is already enabled",
	}

	// ErrNotEnabled is returned when a challenge targets a principal with no
	// committed factor.
	ErrNotEnabled = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeNotEnabled,
		Description: "two-factor authentication is not enabled",
	}

	// ErrNoPendingSetup is returned when ConfirmSetup has no session to
	// confirm against.
	ErrNoPendingSetup = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNoPendingSetup,
		Description: "no enrollment is awaiting confirmation",
	}

	// ErrServerError is the catch-all for unexpected failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// NewRateLimitedError builds the 429 response carrying the remaining lockout.
func NewRateLimitedError(retryAfter time.Duration) *APIError {
	return &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: fmt.Sprintf("too many failed attempts, retry after %s", retryAfter.Round(time.Second)),
		RetryAfter:  retryAfter,
	}
}

// parseErrorResponse turns a non-2xx response into a typed *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := time.ParseDuration(resp.Header.Get("Retry-After") + "s"); err == nil {
			apiErr.RetryAfter = secs
		}
	}

	return apiErr
}
