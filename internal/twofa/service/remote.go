package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harborauth/twofa/pkg/otpx"
)

// DefaultRemoteTimeout bounds the only blocking I/O in the verification
// path. A fallback that hangs is worse than one that fails.
const DefaultRemoteTimeout = 5 * time.Second

// RemoteVerifier posts a verification request to an external service, used
// when the local clock or crypto backend cannot be trusted. The secret
// travels only in its encrypted form. Timeouts and transport failures
// surface as crypto backend errors so the orchestrator treats the attempt as
// transient rather than as a mismatch.
type RemoteVerifier struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

type remoteVerifyRequest struct {
	Secret    string `json:"secret"` // encrypted, base64
	Code      string `json:"code"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

type remoteVerifyResponse struct {
	Valid bool `json:"valid"`
}

// Verify submits the code for remote validation.
func (v *RemoteVerifier) Verify(ctx context.Context, encryptedSecret, code, username string, at time.Time) (bool, error) {
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(remoteVerifyRequest{
		Secret:    encryptedSecret,
		Code:      code,
		Username:  username,
		Timestamp: at.Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.URL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := v.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: remote verifier returned %d", otpx.ErrCryptoBackend, resp.StatusCode)
	}

	var out remoteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}
	return out.Valid, nil
}
