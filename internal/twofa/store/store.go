package store

import (
	"context"
	"errors"

	"github.com/harborauth/twofa/internal/twofa/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable, and gives the orchestrator the atomic
// single-writer semantics per principal that the setup commit protocol
// depends on.
type Store interface {
	Credentials() Credentials
	BackupCodes() BackupCodes
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Credentials interface {
	// GetCredential returns the committed second factor for a principal.
	GetCredential(ctx context.Context, principalID string) (domain.Credential, error)

	// CreateCredential commits a confirmed factor. Fails with
	// ErrAlreadyExists if the principal already has one.
	CreateCredential(ctx context.Context, c domain.Credential) error

	// DeleteCredential removes the factor (disable / pre-re-enrollment).
	DeleteCredential(ctx context.Context, principalID string) error
}

type BackupCodes interface {
	// CreateBackupCode stores one hashed code, pending if SessionID is set.
	CreateBackupCode(ctx context.Context, bc domain.BackupCode) error

	// ListBackupCodes returns all committed codes for a principal, spent
	// ones included so the caller can tell "already used" from "never
	// existed". The caller verifies candidate codes against each hash since
	// Argon2id salts make hashes non-addressable.
	ListBackupCodes(ctx context.Context, principalID string) ([]domain.BackupCode, error)

	// ConsumeBackupCode marks a code spent. Exactly one caller wins for a
	// given code; later callers get ErrNotFound.
	ConsumeBackupCode(ctx context.Context, id string) error

	// CommitSessionBackupCodes clears the pending tag on a setup session's
	// codes, making them live.
	CommitSessionBackupCodes(ctx context.Context, sessionID string) error

	// DeleteAllBackupCodes removes every code for a principal.
	DeleteAllBackupCodes(ctx context.Context, principalID string) error

	// CountActiveBackupCodes returns how many committed, unspent codes remain.
	CountActiveBackupCodes(ctx context.Context, principalID string) (int, error)
}

type Sessions interface {
	// CreateSession writes a new verification session.
	CreateSession(ctx context.Context, s domain.VerificationSession) error

	// GetSetupSession returns the principal's live setup-mode session.
	GetSetupSession(ctx context.Context, principalID string) (domain.VerificationSession, error)

	// IncrementSessionAttempts bumps the failed attempt counter and returns
	// the updated session.
	IncrementSessionAttempts(ctx context.Context, id string) (domain.VerificationSession, error)

	// DeleteSession removes a session; pending backup codes cascade.
	DeleteSession(ctx context.Context, id string) error

	// DeleteSetupSessions removes a principal's setup sessions, used when a
	// fresh BeginSetup supersedes an abandoned one.
	DeleteSetupSessions(ctx context.Context, principalID string) error

	// DeleteExpiredSessions is housekeeping; expired sessions and their
	// pending codes go together.
	DeleteExpiredSessions(ctx context.Context) error
}
