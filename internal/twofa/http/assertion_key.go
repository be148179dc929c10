package http

import (
	"net/http"

	"github.com/harborauth/twofa/pkg/httpx"
	"github.com/harborauth/twofa/pkg/jwtx"
	"github.com/harborauth/twofa/pkg/twofasdk"
)

// AssertionKeyHandler godoc
//
//	@Summary		Assertion verification key
//	@Description	Publishes the Ed25519 public key downstream services use to verify
//	@Description	assertion tokens minted on successful second-factor verification.
//	@Tags			Management
//	@Produce		json
//	@Success		200	{object}	twofasdk.AssertionKeyResponse	"key id, algorithm and public key"
//	@Failure		503	{object}	twofasdk.ErrorResponse			"no signing key loaded"
//	@Router			/v1/2fa/assertion-key [get].
func AssertionKeyHandler(signer *jwtx.Signer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if signer == nil {
			httpx.WriteError(w, http.StatusServiceUnavailable,
				twofasdk.ErrorCodeServerError, "no signing key loaded")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, twofasdk.AssertionKeyResponse{
			KeyID:     signer.KID(),
			Algorithm: "EdDSA",
			PublicKey: signer.PublicKeyBase64(),
		})
	}
}
