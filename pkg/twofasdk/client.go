package twofasdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to one twofa service instance. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a service client with a sane default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// BeginSetup starts enrollment. The response is the only time the secret and
// backup codes are visible; store or display them immediately.
func (c *Client) BeginSetup(ctx context.Context, req SetupRequest) (*SetupResponse, error) {
	var out SetupResponse
	if err := c.postJSON(ctx, "/v1/2fa/setup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmSetup submits the first code from the authenticator, committing the
// factor on success.
func (c *Client) ConfirmSetup(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	var out ConfirmResponse
	if err := c.postJSON(ctx, "/v1/2fa/setup/confirm", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Challenge verifies a TOTP code for an enabled principal.
func (c *Client) Challenge(ctx context.Context, req ChallengeRequest) (*ChallengeResponse, error) {
	var out ChallengeResponse
	if err := c.postJSON(ctx, "/v1/2fa/challenge", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChallengeWithBackupCode is the recovery path when the authenticator device
// is unavailable. Each code works exactly once.
func (c *Client) ChallengeWithBackupCode(ctx context.Context, req ChallengeRequest) (*ChallengeResponse, error) {
	var out ChallengeResponse
	if err := c.postJSON(ctx, "/v1/2fa/challenge/backup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disable removes the principal's factor after verifying a final code.
func (c *Client) Disable(ctx context.Context, req DisableRequest) error {
	return c.postJSON(ctx, "/v1/2fa/disable", req, nil)
}

// RegenerateBackupCodes replaces the backup-code set after verifying a code.
func (c *Client) RegenerateBackupCodes(ctx context.Context, req RegenerateRequest) (*RegenerateResponse, error) {
	var out RegenerateResponse
	if err := c.postJSON(ctx, "/v1/2fa/backup-codes/regenerate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUnlock clears a principal's lockout. Out-of-band administrative use
// only; lockouts never self-heal early.
func (c *Client) AdminUnlock(ctx context.Context, req UnlockRequest) error {
	return c.postJSON(ctx, "/v1/2fa/admin/unlock", req, nil)
}

// AssertionKey fetches the public key for verifying assertion tokens.
func (c *Client) AssertionKey(ctx context.Context) (*AssertionKeyResponse, error) {
	var out AssertionKeyResponse
	if err := c.getJSON(ctx, "/v1/2fa/assertion-key", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez hits the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz hits the readiness probe.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp, buf.Bytes())
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
