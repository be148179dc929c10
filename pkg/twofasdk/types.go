package twofasdk

// SetupRequest starts enrollment for a principal.
type SetupRequest struct {
	PrincipalID string `json:"principal_id"`
	Account     string `json:"account"`
}

// SetupResponse carries everything the caller needs to provision an
// authenticator. The secret and backup codes are shown exactly once and are
// never retrievable again.
type SetupResponse struct {
	SessionID       string   `json:"session_id"`
	Secret          string   `json:"secret"`
	ProvisioningURI string   `json:"provisioning_uri"`
	BackupCodes     []string `json:"backup_codes"`
	ExpiresAt       string   `json:"expires_at"` // RFC 3339
}

// ConfirmRequest proves the authenticator was provisioned correctly.
type ConfirmRequest struct {
	PrincipalID string `json:"principal_id"`
	Code        string `json:"code"`
}

// ConfirmResponse reports the factor is committed.
type ConfirmResponse struct {
	Enabled bool `json:"enabled"`
}

// ChallengeRequest verifies a TOTP code (or, on the backup endpoint, a
// recovery code) at login time.
type ChallengeRequest struct {
	PrincipalID string `json:"principal_id"`
	Code        string `json:"code"`
}

// ChallengeResponse is returned on a successful verification. AssertionToken
// is a short-lived Ed25519-signed JWT; its amr claim records which method
// was used. BackupCodesRemaining is populated on the backup path only.
type ChallengeResponse struct {
	AssertionToken       string `json:"assertion_token"`
	Method               string `json:"method"`
	BackupCodesRemaining int    `json:"backup_codes_remaining,omitempty"`
}

// DisableRequest removes the factor after a final code verification.
type DisableRequest struct {
	PrincipalID string `json:"principal_id"`
	Code        string `json:"code"`
}

// RegenerateRequest replaces the backup-code set after a code verification.
type RegenerateRequest struct {
	PrincipalID string `json:"principal_id"`
	Code        string `json:"code"`
}

// RegenerateResponse carries the fresh set; the old set is already invalid.
type RegenerateResponse struct {
	BackupCodes []string `json:"backup_codes"`
}

// UnlockRequest is the out-of-band administrative lockout reset.
type UnlockRequest struct {
	PrincipalID string `json:"principal_id"`
}

// AssertionKeyResponse publishes the verification key for assertion tokens.
type AssertionKeyResponse struct {
	KeyID     string `json:"kid"`
	Algorithm string `json:"alg"`
	PublicKey string `json:"public_key"` // base64url raw Ed25519 key
}

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
