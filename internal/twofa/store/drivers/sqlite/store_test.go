package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harborauth/twofa/internal/twofa/domain"
	"github.com/harborauth/twofa/internal/twofa/store"
	"github.com/harborauth/twofa/internal/twofa/store/drivers/sqlite"
	"github.com/harborauth/twofa/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "twofa.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testCredential(principalID string) domain.Credential {
	now := time.Now().UTC()
	return domain.Credential{
		PrincipalID:     principalID,
		SecretEncrypted: "sealed-secret",
		Issuer:          "twofa-service",
		Account:         "alice@example.com",
		EnabledAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func TestCredentialLifecycle(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Credentials().GetCredential(ctx, "p1")
	require.ErrorIs(t, err, store.ErrNotFound)

	cred := testCredential("p1")
	require.NoError(t, s.Credentials().CreateCredential(ctx, cred))

	got, err := s.Credentials().GetCredential(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, cred.SecretEncrypted, got.SecretEncrypted)
	require.Equal(t, cred.Account, got.Account)

	err = s.Credentials().CreateCredential(ctx, cred)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.Credentials().DeleteCredential(ctx, "p1"))
	require.ErrorIs(t, s.Credentials().DeleteCredential(ctx, "p1"), store.ErrNotFound)
}

func TestBackupCodePendingCommitConsume(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sess := domain.VerificationSession{
		ID:              idx.New().String(),
		PrincipalID:     "p1",
		Account:         "alice@example.com",
		Mode:            domain.ModeSetup,
		Step:            domain.StepAwaitingCode,
		SecretEncrypted: "sealed",
		CreatedAt:       now,
		ExpiresAt:       now.Add(10 * time.Minute),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	codeID := idx.New().String()
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:          codeID,
		PrincipalID: "p1",
		CodeHash:    "$argon2id$fake",
		SessionID:   &sess.ID,
		CreatedAt:   now,
	}))

	// Pending codes are not committed and cannot be consumed yet.
	committed, err := s.BackupCodes().ListBackupCodes(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, committed)
	require.ErrorIs(t, s.BackupCodes().ConsumeBackupCode(ctx, codeID), store.ErrNotFound)

	require.NoError(t, s.BackupCodes().CommitSessionBackupCodes(ctx, sess.ID))

	committed, err = s.BackupCodes().ListBackupCodes(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, committed, 1)
	require.Nil(t, committed[0].SessionID)
	require.False(t, committed[0].Spent())

	n, err := s.BackupCodes().CountActiveBackupCodes(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Exactly one consume wins.
	require.NoError(t, s.BackupCodes().ConsumeBackupCode(ctx, codeID))
	require.ErrorIs(t, s.BackupCodes().ConsumeBackupCode(ctx, codeID), store.ErrNotFound)

	n, err = s.BackupCodes().CountActiveBackupCodes(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, n)

	// Spent codes stay visible in the listing.
	committed, err = s.BackupCodes().ListBackupCodes(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, committed, 1)
	require.True(t, committed[0].Spent())
}

func TestConsumeBackupCodeConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	codeID := idx.New().String()
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:          codeID,
		PrincipalID: "p1",
		CodeHash:    "$argon2id$fake",
		CreatedAt:   now,
	}))

	const consumers = 8
	results := make(chan error, consumers)

	var start sync.WaitGroup
	start.Add(1)
	for range consumers {
		go func() {
			start.Wait()
			results <- s.BackupCodes().ConsumeBackupCode(ctx, codeID)
		}()
	}
	start.Done()

	var wins, losses int
	for range consumers {
		switch err := <-results; {
		case err == nil:
			wins++
		case errors.Is(err, store.ErrNotFound):
			losses++
		default:
			t.Fatalf("unexpected consume error: %v", err)
		}
	}

	require.Equal(t, 1, wins)
	require.Equal(t, consumers-1, losses)
}

func TestDeleteSessionCascadesPendingCodes(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sess := domain.VerificationSession{
		ID:              idx.New().String(),
		PrincipalID:     "p2",
		Account:         "bob@example.com",
		Mode:            domain.ModeSetup,
		Step:            domain.StepAwaitingCode,
		SecretEncrypted: "sealed",
		CreatedAt:       now,
		ExpiresAt:       now.Add(10 * time.Minute),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:          idx.New().String(),
		PrincipalID: "p2",
		CodeHash:    "$argon2id$fake",
		SessionID:   &sess.ID,
		CreatedAt:   now,
	}))

	require.NoError(t, s.Sessions().DeleteSession(ctx, sess.ID))

	// Cascade took the pending code with the session.
	require.NoError(t, s.BackupCodes().CommitSessionBackupCodes(ctx, sess.ID))
	committed, err := s.BackupCodes().ListBackupCodes(ctx, "p2")
	require.NoError(t, err)
	require.Empty(t, committed)
}

func TestCascadeFiresOnLaterConnections(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sess := domain.VerificationSession{
		ID:              idx.New().String(),
		PrincipalID:     "p6",
		Account:         "dave@example.com",
		Mode:            domain.ModeSetup,
		Step:            domain.StepAwaitingCode,
		SecretEncrypted: "sealed",
		CreatedAt:       now,
		ExpiresAt:       now.Add(10 * time.Minute),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))
	require.NoError(t, s.BackupCodes().CreateBackupCode(ctx, domain.BackupCode{
		ID:          idx.New().String(),
		PrincipalID: "p6",
		CodeHash:    "$argon2id$fake",
		SessionID:   &sess.ID,
		CreatedAt:   now,
	}))

	// Pin the pool's existing connection with an idle transaction so the
	// delete below is forced onto a freshly opened one. FK enforcement has
	// to hold there too, not just on whichever connection came up first.
	tx, err := s.Tx(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	require.NoError(t, s.Sessions().DeleteSession(ctx, sess.ID))
	require.NoError(t, tx.Rollback())

	require.NoError(t, s.BackupCodes().CommitSessionBackupCodes(ctx, sess.ID))
	committed, err := s.BackupCodes().ListBackupCodes(ctx, "p6")
	require.NoError(t, err)
	require.Empty(t, committed)
}

func TestSessionAttemptsAndExpiry(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := domain.VerificationSession{
		ID:              idx.New().String(),
		PrincipalID:     "p3",
		Account:         "carol@example.com",
		Mode:            domain.ModeSetup,
		Step:            domain.StepAwaitingCode,
		SecretEncrypted: "sealed",
		CreatedAt:       now,
		ExpiresAt:       now.Add(10 * time.Minute),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, live))

	got, err := s.Sessions().GetSetupSession(ctx, "p3")
	require.NoError(t, err)
	require.Equal(t, live.ID, got.ID)
	require.Equal(t, domain.ModeSetup, got.Mode)

	got, err = s.Sessions().IncrementSessionAttempts(ctx, live.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Attempts)

	_, err = s.Sessions().IncrementSessionAttempts(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	// An expired session is invisible to GetSetupSession and swept by
	// DeleteExpiredSessions.
	expired := live
	expired.ID = idx.New().String()
	expired.PrincipalID = "p4"
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, s.Sessions().CreateSession(ctx, expired))

	_, err = s.Sessions().GetSetupSession(ctx, "p4")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Sessions().DeleteExpiredSessions(ctx))
	_, err = s.Sessions().IncrementSessionAttempts(ctx, expired.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Credentials().CreateCredential(ctx, testCredential("p5")); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Credentials().GetCredential(ctx, "p5")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Credentials().CreateCredential(ctx, testCredential("p5"))
	}))

	_, err = s.Credentials().GetCredential(ctx, "p5")
	require.NoError(t, err)
}
