package jwtx_test

import (
	"testing"
	"time"

	"github.com/harborauth/twofa/pkg/cryptox"
	"github.com/harborauth/twofa/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *jwtx.Signer {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSigner("test-key", pemKey)
	require.NoError(t, err)
	return signer
}

func TestSignAndVerifyAssertion(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	claims := jwtx.NewAssertionClaims("principal-1", "twofa-service",
		[]string{jwtx.AMROTP}, time.Minute, time.Now())

	token, err := signer.Sign(claims)
	require.NoError(t, err)

	verified, err := jwtx.VerifyAssertion(token, signer.PublicKey(), "twofa-service")
	require.NoError(t, err)
	require.Equal(t, "principal-1", verified.Subject)
	require.Equal(t, []string{jwtx.AMROTP}, verified.AMR)
	require.NotEmpty(t, verified.ID, "jti must be set")
}

func TestVerifyAssertionRejectsWrongKey(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	other := newTestSigner(t)

	token, err := signer.Sign(jwtx.NewAssertionClaims("p", "twofa-service",
		[]string{jwtx.AMRBackupCode}, time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = jwtx.VerifyAssertion(token, other.PublicKey(), "twofa-service")
	require.ErrorIs(t, err, jwtx.ErrInvalidAssertion)
}

func TestVerifyAssertionRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	token, err := signer.Sign(jwtx.NewAssertionClaims("p", "someone-else",
		[]string{jwtx.AMROTP}, time.Minute, time.Now()))
	require.NoError(t, err)

	_, err = jwtx.VerifyAssertion(token, signer.PublicKey(), "twofa-service")
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyAssertionRejectsExpired(t *testing.T) {
	t.Parallel()

	signer := newTestSigner(t)
	token, err := signer.Sign(jwtx.NewAssertionClaims("p", "twofa-service",
		[]string{jwtx.AMROTP}, time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = jwtx.VerifyAssertion(token, signer.PublicKey(), "twofa-service")
	require.ErrorIs(t, err, jwtx.ErrInvalidAssertion)
}

func TestNewSignerRejectsBadPEM(t *testing.T) {
	t.Parallel()

	_, err := jwtx.NewSigner("kid", []byte("not pem"))
	require.Error(t, err)
}
