package sqlite

import (
	"context"
	"strings"

	"github.com/harborauth/twofa/internal/twofa/domain"
	"github.com/harborauth/twofa/internal/twofa/store"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredential(ctx context.Context, principalID string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT principal_id, secret_encrypted, issuer, account, enabled_at, created_at, updated_at
		FROM credentials
		WHERE principal_id = ?`, principalID)

	var c domain.Credential
	err := row.Scan(&c.PrincipalID, &c.SecretEncrypted, &c.Issuer, &c.Account,
		&c.EnabledAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (principal_id, secret_encrypted, issuer, account, enabled_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.PrincipalID, c.SecretEncrypted, c.Issuer, c.Account,
		c.EnabledAt, c.CreatedAt, c.UpdatedAt)
	if isConstraintErr(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, principalID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE principal_id = ?`, principalID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// isConstraintErr reports whether err is a sqlite uniqueness violation.
// modernc surfaces these as opaque driver errors, so match on message.
func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint")
}
