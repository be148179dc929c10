package sqlite

import (
	"context"
	"time"

	"github.com/harborauth/twofa/internal/twofa/domain"
	"github.com/harborauth/twofa/internal/twofa/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.VerificationSession) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_sessions
			(id, principal_id, account, mode, step, secret_encrypted, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.PrincipalID, s.Account, string(s.Mode), string(s.Step),
		s.SecretEncrypted, s.Attempts, s.CreatedAt, s.ExpiresAt)
	if isConstraintErr(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) GetSetupSession(ctx context.Context, principalID string) (domain.VerificationSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, principal_id, account, mode, step, secret_encrypted, attempts, created_at, expires_at
		FROM verification_sessions
		WHERE principal_id = ? AND mode = ? AND expires_at > ?
		ORDER BY created_at DESC
		LIMIT 1`,
		principalID, string(domain.ModeSetup), time.Now().UTC())

	return scanSession(row)
}

func (r *sessionsRepo) IncrementSessionAttempts(ctx context.Context, id string) (domain.VerificationSession, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE verification_sessions
		SET attempts = attempts + 1
		WHERE id = ?`, id)
	if err != nil {
		return domain.VerificationSession{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.VerificationSession{}, store.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, principal_id, account, mode, step, secret_encrypted, attempts, created_at, expires_at
		FROM verification_sessions
		WHERE id = ?`, id)
	return scanSession(row)
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteSetupSessions(ctx context.Context, principalID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM verification_sessions
		WHERE principal_id = ? AND mode = ?`,
		principalID, string(domain.ModeSetup))
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.VerificationSession, error) {
	var (
		s          domain.VerificationSession
		mode, step string
	)
	err := row.Scan(&s.ID, &s.PrincipalID, &s.Account, &mode, &step,
		&s.SecretEncrypted, &s.Attempts, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.VerificationSession{}, mapNotFound(err)
	}
	s.Mode = domain.SessionMode(mode)
	s.Step = domain.SessionStep(step)
	return s, nil
}
