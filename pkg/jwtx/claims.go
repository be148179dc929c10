package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAssertionTTL is the default lifetime of a two-factor assertion.
// Assertions exist only to bridge a successful verification into the
// caller's session issuance, so they are deliberately short-lived.
const DefaultAssertionTTL = 5 * time.Minute

// Authentication Method Reference values carried in assertions.
//
//	"otp"   a time-based one-time password was verified
//	"bcode" a single-use backup code was consumed
const (
	AMROTP        = "otp"
	AMRBackupCode = "bcode"
)

// AssertionClaims are the claims of a two-factor assertion token. The
// subject is the principal id; AMR records which second factor was used so
// downstream services can distinguish authenticator verification from a
// recovery-code fallback.
type AssertionClaims struct {
	jwt.RegisteredClaims

	// Authentication Methods Reference, e.g. ["otp"] or ["bcode"].
	AMR []string `json:"amr,omitempty"`
}

// NewAssertionClaims builds minimally-correct assertion claims.
func NewAssertionClaims(principalID, issuer string, amr []string, ttl time.Duration, now time.Time) AssertionClaims {
	if ttl <= 0 {
		ttl = DefaultAssertionTTL
	}
	return AssertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principalID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		AMR: amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
