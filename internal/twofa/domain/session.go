package domain

import "time"

// SessionMode distinguishes first-time enrollment from a login challenge.
type SessionMode string

const (
	ModeSetup  SessionMode = "setup"
	ModeVerify SessionMode = "verify"
)

// SessionStep is the position of a session inside its state machine.
type SessionStep string

const (
	StepAwaitingSecret     SessionStep = "awaiting_secret"
	StepAwaitingCode       SessionStep = "awaiting_code"
	StepAwaitingBackupCode SessionStep = "awaiting_backup_code"
	StepEnabled            SessionStep = "enabled"
	StepFailed             SessionStep = "failed"
)

// VerificationSession is the ephemeral state of one enrollment attempt. The
// uncommitted secret lives here (encrypted) until the principal proves their
// authenticator is provisioned; abandoned sessions simply expire and are
// swept by housekeeping, which also cascades away their pending backup codes.
type VerificationSession struct {
	ID              string // ULID
	PrincipalID     string
	Account         string
	Mode            SessionMode
	Step            SessionStep
	SecretEncrypted string
	Attempts        int
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// Expired reports whether the session has passed its TTL at the given time.
func (s VerificationSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
