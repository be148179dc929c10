package domain

import "time"

// BackupCode is a single-use recovery code. Only the Argon2id hash is stored.
// While an enrollment is awaiting confirmation the row carries the setup
// session id; committing the setup clears it. A code with a non-nil UsedAt is
// spent and can never be accepted again.
type BackupCode struct {
	ID          string // ULID
	PrincipalID string
	CodeHash    string  // Argon2id PHC string
	SessionID   *string // pending-commit tag, nil once committed
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// Spent reports whether the code has already been consumed.
func (b BackupCode) Spent() bool { return b.UsedAt != nil }
