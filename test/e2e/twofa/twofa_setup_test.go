package twofa_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/harborauth/twofa/pkg/twofasdk"
)

// TestSetupFlow covers the happy-path enrollment: begin, provision an
// authenticator from the returned secret, confirm with the first code.
func TestSetupFlow(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
		PrincipalID: "alice",
		Account:     "alice@example.com",
	})
	require.NoError(t, err)

	require.NotEmpty(t, setup.SessionID)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.ProvisioningURI, "otpauth://totp/")
	require.Contains(t, setup.ProvisioningURI, testIssuer)
	require.Len(t, setup.BackupCodes, 10)
	for _, bc := range setup.BackupCodes {
		require.Regexp(t, `^[0-9A-Z]{4}-[0-9A-Z]{5}$`, bc)
	}

	expiresAt, err := time.Parse(time.RFC3339, setup.ExpiresAt)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	confirm, err := client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{
		PrincipalID: "alice",
		Code:        totpCode(t, setup.Secret, time.Now()),
	})
	require.NoError(t, err)
	require.True(t, confirm.Enabled)
}

// TestSetupAlreadyEnabled verifies an enabled principal cannot start a second
// enrollment without disabling first.
func TestSetupAlreadyEnabled(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	enrollPrincipal(t, client, "bob")

	_, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
		PrincipalID: "bob",
		Account:     "bob@example.com",
	})
	assertAPIError(t, err, 409, twofasdk.ErrorCodeAlreadyEnabled)
}

// TestConfirmWithoutSetup verifies confirmation without a pending enrollment
// is rejected.
func TestConfirmWithoutSetup(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	_, err := client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{
		PrincipalID: "carol",
		Code:        "000000",
	})
	assertAPIError(t, err, 400, twofasdk.ErrorCodeNoPendingSetup)
}

// TestConfirmWrongCode verifies a wrong confirmation code leaves the
// enrollment pending so the right code still works.
func TestConfirmWrongCode(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
		PrincipalID: "dave",
		Account:     "dave@example.com",
	})
	require.NoError(t, err)

	good := totpCode(t, setup.Secret, time.Now())
	bad := "000000"
	if bad == good {
		bad = "000001"
	}

	_, err = client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{PrincipalID: "dave", Code: bad})
	assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)

	confirm, err := client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{
		PrincipalID: "dave",
		Code:        totpCode(t, setup.Secret, time.Now()),
	})
	require.NoError(t, err)
	require.True(t, confirm.Enabled)
}

// TestSetupSupersedesPrevious verifies starting a second enrollment discards
// the first one's secret.
func TestSetupSupersedesPrevious(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	first, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
		PrincipalID: "erin",
		Account:     "erin@example.com",
	})
	require.NoError(t, err)

	second, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
		PrincipalID: "erin",
		Account:     "erin@example.com",
	})
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	// The superseded secret no longer confirms anything unless the two
	// secrets happen to collide on this window's code.
	oldCode := totpCode(t, first.Secret, time.Now())
	if oldCode != totpCode(t, second.Secret, time.Now()) {
		_, err = client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{PrincipalID: "erin", Code: oldCode})
		assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)
	}

	confirm, err := client.ConfirmSetup(ctx, twofasdk.ConfirmRequest{
		PrincipalID: "erin",
		Code:        totpCode(t, second.Secret, time.Now()),
	})
	require.NoError(t, err)
	require.True(t, confirm.Enabled)
}

// TestSetupSecretIsBase32 verifies the shared secret is standard base32 so
// any authenticator app can import it.
func TestSetupSecretIsBase32(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)

	setup, err := client.BeginSetup(context.Background(), twofasdk.SetupRequest{
		PrincipalID: "frank",
		Account:     "frank@example.com",
	})
	require.NoError(t, err)

	for _, r := range setup.Secret {
		require.True(t, strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ234567", r),
			"secret should be unpadded base32, got %q", setup.Secret)
	}
}
