// Package twofasdk is the typed client for the twofa service. It wraps the
// HTTP API (setup, confirmation, challenges, backup-code recovery and the
// admin surface) so callers such as login and account-settings services do
// not hand-roll requests or error handling.
//
// Basic usage:
//
//	client := twofasdk.NewClient("http://localhost:8080")
//	start, err := client.BeginSetup(ctx, twofasdk.SetupRequest{
//		PrincipalID: "01J...", Account: "alice@example.com",
//	})
//
// All errors coming back from the service are surfaced as *twofasdk.APIError
// so callers can branch on the machine-readable code.
package twofasdk
