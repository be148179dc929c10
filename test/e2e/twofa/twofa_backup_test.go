package twofa_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborauth/twofa/pkg/twofasdk"
)

// TestBackupCodeChallenge covers the recovery path: a backup code verifies in
// place of a TOTP code, works exactly once, and reports the remaining count.
func TestBackupCodeChallenge(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, _ := enrollPrincipal(t, client, "alice")
	code := setup.BackupCodes[0]

	res, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "alice",
		Code:        code,
	})
	require.NoError(t, err)
	require.Equal(t, "bcode", res.Method)
	require.NotEmpty(t, res.AssertionToken)
	require.Equal(t, 9, res.BackupCodesRemaining)

	// Spent codes never verify again
	_, err = client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "alice",
		Code:        code,
	})
	assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)
}

// TestBackupCodeSloppyEntry verifies lowercase and missing hyphens are
// tolerated; users retype these from paper.
func TestBackupCodeSloppyEntry(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, _ := enrollPrincipal(t, client, "bob")
	sloppy := strings.ToLower(strings.ReplaceAll(setup.BackupCodes[1], "-", ""))

	res, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "bob",
		Code:        sloppy,
	})
	require.NoError(t, err)
	require.Equal(t, 9, res.BackupCodesRemaining)
}

// TestBackupCodeUnknown verifies a well-formed code from another principal's
// set is rejected as incorrect.
func TestBackupCodeUnknown(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	enrollPrincipal(t, client, "carol")
	other, _ := enrollPrincipal(t, client, "dave")

	_, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "carol",
		Code:        other.BackupCodes[0],
	})
	assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)
}

// TestRegenerateBackupCodes verifies regeneration invalidates the old set
// wholesale and issues a fresh one.
func TestRegenerateBackupCodes(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, burned := enrollPrincipal(t, client, "erin")

	regen, err := client.RegenerateBackupCodes(ctx, twofasdk.RegenerateRequest{
		PrincipalID: "erin",
		Code:        freshCode(t, setup.Secret, burned),
	})
	require.NoError(t, err)
	require.Len(t, regen.BackupCodes, 10)
	require.NotEqual(t, setup.BackupCodes, regen.BackupCodes)

	// Old set is dead
	_, err = client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "erin",
		Code:        setup.BackupCodes[0],
	})
	assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)

	// New set works
	res, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "erin",
		Code:        regen.BackupCodes[0],
	})
	require.NoError(t, err)
	require.Equal(t, 9, res.BackupCodesRemaining)
}

// TestDisableRemovesEverything verifies disable tears down the factor and
// backup codes, and the principal can enroll again from scratch.
func TestDisableRemovesEverything(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, burned := enrollPrincipal(t, client, "frank")

	err := client.Disable(ctx, twofasdk.DisableRequest{
		PrincipalID: "frank",
		Code:        freshCode(t, setup.Secret, burned),
	})
	require.NoError(t, err)

	// Factor gone: challenges report not enabled, backup codes are dead
	_, err = client.Challenge(ctx, twofasdk.ChallengeRequest{PrincipalID: "frank", Code: "123456"})
	assertAPIError(t, err, 409, twofasdk.ErrorCodeNotEnabled)

	_, err = client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "frank",
		Code:        setup.BackupCodes[0],
	})
	assertAPIError(t, err, 409, twofasdk.ErrorCodeNotEnabled)

	// Re-enrollment starts clean with a new secret
	again, _ := enrollPrincipal(t, client, "frank")
	require.NotEqual(t, setup.Secret, again.Secret)
}
