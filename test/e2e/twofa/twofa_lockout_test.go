package twofa_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborauth/twofa/pkg/twofasdk"
)

// TestLockoutAfterRepeatedFailures verifies the per-principal lockout: five
// failed verifications lock the principal, correct codes are rejected while
// locked, and an admin unlock restores service.
func TestLockoutAfterRepeatedFailures(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, burned := enrollPrincipal(t, client, "alice")

	for range 5 {
		_, err := client.Challenge(ctx, twofasdk.ChallengeRequest{
			PrincipalID: "alice",
			Code:        "000000",
		})
		assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)
	}

	// Locked: even the correct code is rejected, with a Retry-After hint
	good := freshCode(t, setup.Secret, burned)
	_, err := client.Challenge(ctx, twofasdk.ChallengeRequest{PrincipalID: "alice", Code: good})
	assertAPIError(t, err, 429, twofasdk.ErrorCodeRateLimited)

	apiErr := err.(*twofasdk.APIError)
	require.Greater(t, apiErr.RetryAfter.Seconds(), 0.0)

	// Lockouts don't leak across principals
	other, otherBurned := enrollPrincipal(t, client, "bob")
	_, err = client.Challenge(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "bob",
		Code:        freshCode(t, other.Secret, otherBurned),
	})
	require.NoError(t, err)

	// Admin unlock restores the locked principal
	err = client.AdminUnlock(ctx, twofasdk.UnlockRequest{PrincipalID: "alice"})
	require.NoError(t, err)

	res, err := client.Challenge(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "alice",
		Code:        freshCode(t, setup.Secret, good),
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AssertionToken)
}

// TestLockoutCoversBackupPath verifies backup-code failures count toward the
// same lockout as TOTP failures.
func TestLockoutCoversBackupPath(t *testing.T) {
	baseURL, cleanup := setupTwofaContainer(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	setup, _ := enrollPrincipal(t, client, "carol")

	for range 5 {
		_, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
			PrincipalID: "carol",
			Code:        "AAAA-AAAAA",
		})
		assertAPIError(t, err, 401, twofasdk.ErrorCodeInvalidCode)
	}

	_, err := client.ChallengeWithBackupCode(ctx, twofasdk.ChallengeRequest{
		PrincipalID: "carol",
		Code:        setup.BackupCodes[0],
	})
	assertAPIError(t, err, 429, twofasdk.ErrorCodeRateLimited)
}
