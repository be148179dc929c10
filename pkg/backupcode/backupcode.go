// Package backupcode generates and validates single-use recovery codes.
//
// A code is eight random alphanumeric characters plus one checksum
// character, displayed as XXXX-XXXXC. The checksum is a weighted positional
// sum over the body, so a single mistyped character is caught locally with
// high probability before the store is ever consulted. It is a
// format-integrity check, not a cryptographic authenticator; single-use
// enforcement belongs to the store.
package backupcode

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	// alphabet maps characters to checksum values by index (base 36).
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// BodyLength is the number of random characters per code.
	BodyLength = 8

	// MinSetSize and MaxSetSize bound the number of codes issued per
	// enrollment.
	MinSetSize = 10
	MaxSetSize = 12
)

var (
	// ErrSetSize rejects set sizes outside [MinSetSize, MaxSetSize].
	ErrSetSize = errors.New("backupcode: set size must be between 10 and 12")

	// ErrRandomSource reports CSPRNG exhaustion. Unrecoverable.
	ErrRandomSource = errors.New("backupcode: random source failure")
)

// Generate returns one formatted code: random body, checksum appended,
// hyphen after the fourth character.
func Generate() (string, error) {
	body := make([]byte, BodyLength)
	for i := range body {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRandomSource, err)
		}
		body[i] = alphabet[n.Int64()]
	}

	check := checksum(body)
	return Format(string(body) + string(check)), nil
}

// GenerateSet returns n distinct codes. Collisions within a set are
// astronomically rare but are regenerated rather than ignored.
func GenerateSet(n int) ([]string, error) {
	if n < MinSetSize || n > MaxSetSize {
		return nil, ErrSetSize
	}

	codes := make([]string, 0, n)
	seen := make(map[string]bool, n)
	for len(codes) < n {
		code, err := Generate()
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes, nil
}

// Normalize upper-cases input and strips everything that is not an
// alphanumeric character, yielding the canonical nine-character form used
// for checksum validation and hashing.
func Normalize(input string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(input) {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateFormat reports whether input normalizes to the XXXX-XXXXC shape
// with a correct checksum character.
func ValidateFormat(input string) bool {
	code := Normalize(input)
	if len(code) != BodyLength+1 {
		return false
	}
	return checksum([]byte(code[:BodyLength])) == code[BodyLength]
}

// Format renders a normalized nine-character code for display.
func Format(code string) string {
	if len(code) != BodyLength+1 {
		return code
	}
	return code[:4] + "-" + code[4:]
}

// checksum computes the weighted positional sum of the body modulo the
// alphabet size, weights being 1-based positions.
func checksum(body []byte) byte {
	sum := 0
	for i, c := range body {
		sum += (i + 1) * strings.IndexByte(alphabet, c)
	}
	return alphabet[sum%len(alphabet)]
}
