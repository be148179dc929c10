package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// SecretBytes is the raw entropy drawn for a new shared secret. 160 bits is
// the RFC 4226 recommended minimum for HMAC-SHA1.
const SecretBytes = 20

// GenerateSecret draws SecretBytes from the CSPRNG and returns the RFC 4648
// Base32 encoding, padded with '=' to a multiple of eight characters.
// Padding is cosmetic: NormalizeSecret strips it before any decode, and the
// engine tolerates both forms.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretBytes)
	if _, err := rand.Read(buf); err != nil {
		// Randomness exhaustion is unrecoverable for the caller.
		return "", fmt.Errorf("%w: %v", ErrCryptoBackend, err)
	}
	return base32.StdEncoding.EncodeToString(buf), nil
}

// NormalizeSecret upper-cases a Base32 secret and strips whitespace and
// trailing '=' padding, producing the canonical form used for decoding,
// fingerprinting and URI embedding.
func NormalizeSecret(secret string) string {
	secret = strings.ToUpper(strings.TrimSpace(secret))
	secret = strings.ReplaceAll(secret, " ", "")
	return strings.TrimRight(secret, "=")
}
