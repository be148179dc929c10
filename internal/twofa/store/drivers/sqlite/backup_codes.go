package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/harborauth/twofa/internal/twofa/domain"
	"github.com/harborauth/twofa/internal/twofa/store"
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCode(ctx context.Context, bc domain.BackupCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backup_codes (id, principal_id, code_hash, session_id, used_at, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)`,
		bc.ID, bc.PrincipalID, bc.CodeHash, mapOptionalString(bc.SessionID), bc.CreatedAt)
	return err
}

func (r *backupCodesRepo) ListBackupCodes(ctx context.Context, principalID string) ([]domain.BackupCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, principal_id, code_hash, session_id, used_at, created_at
		FROM backup_codes
		WHERE principal_id = ? AND session_id IS NULL
		ORDER BY created_at, id`, principalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.BackupCode
	for rows.Next() {
		var (
			bc        domain.BackupCode
			sessionID sql.NullString
			usedAt    sql.NullTime
		)
		if err := rows.Scan(&bc.ID, &bc.PrincipalID, &bc.CodeHash,
			&sessionID, &usedAt, &bc.CreatedAt); err != nil {
			return nil, err
		}
		bc.SessionID = mapNullStringPtr(sessionID)
		bc.UsedAt = mapNullTimePtr(usedAt)
		out = append(out, bc)
	}
	return out, rows.Err()
}

// ConsumeBackupCode flips the code to spent. The WHERE used_at IS NULL guard
// makes concurrent consumption attempts race safely: exactly one UPDATE
// affects a row, the rest see ErrNotFound.
func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE backup_codes
		SET used_at = ?
		WHERE id = ? AND session_id IS NULL AND used_at IS NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *backupCodesRepo) CommitSessionBackupCodes(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE backup_codes
		SET session_id = NULL
		WHERE session_id = ?`, sessionID)
	return err
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, principalID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM backup_codes WHERE principal_id = ?`, principalID)
	return err
}

func (r *backupCodesRepo) CountActiveBackupCodes(ctx context.Context, principalID string) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM backup_codes
		WHERE principal_id = ? AND session_id IS NULL AND used_at IS NULL`, principalID)

	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
