package otpx

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ErrInvalidLabel reports an issuer or account that cannot form a valid
// otpauth label.
var ErrInvalidLabel = errors.New("otpx: invalid issuer or account label")

// BuildProvisioningURI formats the otpauth:// URI consumed by authenticator
// apps (Key Uri Format). Issuer and account are percent-encoded; the secret
// is embedded without '=' padding. Pure formatting, no side effects.
func BuildProvisioningURI(secret, issuer, account string) (string, error) {
	if err := validateLabelPart(issuer); err != nil {
		return "", err
	}
	if err := validateLabelPart(account); err != nil {
		return "", err
	}

	label := fmt.Sprintf("%s:%s", url.PathEscape(issuer), url.PathEscape(account))

	query := url.Values{}
	query.Set("secret", NormalizeSecret(secret))
	query.Set("issuer", issuer)
	query.Set("algorithm", "SHA1")
	query.Set("digits", fmt.Sprintf("%d", Digits))
	query.Set("period", fmt.Sprintf("%d", DefaultPeriod))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}

// validateLabelPart rejects empty parts, the reserved ':' separator and
// control characters.
func validateLabelPart(s string) error {
	if strings.TrimSpace(s) == "" || strings.ContainsRune(s, ':') {
		return ErrInvalidLabel
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return ErrInvalidLabel
		}
	}
	return nil
}
