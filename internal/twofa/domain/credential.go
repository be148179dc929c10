package domain

import "time"

// Credential is a principal's committed second factor. The shared secret is
// held only in encrypted form (AES-256-GCM under the service master key) and
// is immutable once committed. Re-enrollment replaces the whole record after
// a fresh setup confirmation.
type Credential struct {
	PrincipalID     string
	SecretEncrypted string // base64, pkg/cryptox sealed
	Issuer          string
	Account         string
	EnabledAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
