package domain

import "time"

// EnrollmentStart is returned by BeginSetup. The plaintext secret and backup
// codes appear here exactly once; neither is ever persisted or logged in the
// clear. Callers render the provisioning URI as a QR code themselves.
type EnrollmentStart struct {
	SessionID       string
	Secret          string // Base32, padded
	ProvisioningURI string
	BackupCodes     []string
	ExpiresAt       time.Time
}

// ChallengeResult is the outcome of a successful verification. The assertion
// token is a short-lived signed JWT downstream services can check instead of
// trusting the caller.
type ChallengeResult struct {
	PrincipalID          string
	Method               string // "otp" or "bcode"
	AssertionToken       string
	BackupCodesRemaining int // meaningful on the backup path only
}
