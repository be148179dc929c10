package twofa_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harborauth/twofa/pkg/twofasdk"
)

// TestStrictRateLimitOnChallenge verifies the per-IP limiter on the
// verification endpoints using the production defaults. This sits in front
// of the per-principal lockout, so it trips on volume regardless of which
// principals are targeted.
func TestStrictRateLimitOnChallenge(t *testing.T) {
	baseURL, cleanup := setupTwofaContainerWithDefaultRateLimits(t)
	defer cleanup()

	client := twofasdk.NewClient(baseURL)
	ctx := context.Background()

	// The strict profile allows a small burst; hammer past it. Each request
	// targets a different principal so the lockout never engages.
	var rateLimited bool
	for i := 0; i < 20 && !rateLimited; i++ {
		_, err := client.Challenge(ctx, twofasdk.ChallengeRequest{
			PrincipalID: fmt.Sprintf("principal-%d", i),
			Code:        "000000",
		})
		require.Error(t, err)

		if apiErr, ok := err.(*twofasdk.APIError); ok && apiErr.StatusCode == 429 {
			rateLimited = true
		}
	}

	require.True(t, rateLimited, "strict profile should reject within 20 rapid requests")
}
