package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborauth/twofa/internal/twofa/service"
	"github.com/harborauth/twofa/pkg/httpx"
	"github.com/harborauth/twofa/pkg/slogx"
	"github.com/harborauth/twofa/pkg/twofasdk"
)

// SetupHandler handles the enrollment endpoints.
type SetupHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleBegin handles POST /v1/2fa/setup
//
//	@Summary		Begin two-factor enrollment
//	@Description	Generates a fresh secret, provisioning URI and backup-code set for the
//	@Description	principal. Nothing is committed until the first code is confirmed; the
//	@Description	secret and backup codes are shown exactly once.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		twofasdk.SetupRequest	true	"principal and account label"
//	@Success		200		{object}	twofasdk.SetupResponse	"secret, provisioning URI, backup codes"
//	@Failure		400		{object}	twofasdk.ErrorResponse	"malformed request"
//	@Failure		409		{object}	twofasdk.ErrorResponse	"already enabled"
//	@Failure		500		{object}	twofasdk.ErrorResponse	"internal server error"
//	@Router			/v1/2fa/setup [post].
func (h *SetupHandler) HandleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Account == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	start, err := h.TwoFactorService.BeginSetup(ctx, req.PrincipalID, req.Account)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyEnabled):
			twofasdk.ErrAlreadyEnabled.WriteError(w)
		default:
			log.Error("begin setup failed", "principal_id", req.PrincipalID, "err", err)
			twofasdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, twofasdk.SetupResponse{
		SessionID:       start.SessionID,
		Secret:          start.Secret,
		ProvisioningURI: start.ProvisioningURI,
		BackupCodes:     start.BackupCodes,
		ExpiresAt:       start.ExpiresAt.Format(timeFormat),
	})
}

// HandleConfirm handles POST /v1/2fa/setup/confirm
//
//	@Summary		Confirm two-factor enrollment
//	@Description	Verifies the first code from the authenticator against the pending
//	@Description	secret. On success the secret and backup codes are committed atomically;
//	@Description	a wrong code leaves the credential store untouched.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			request	body		twofasdk.ConfirmRequest		true	"principal and code"
//	@Success		200		{object}	twofasdk.ConfirmResponse	"factor enabled"
//	@Failure		400		{object}	twofasdk.ErrorResponse		"malformed request or no pending setup"
//	@Failure		401		{object}	twofasdk.ErrorResponse		"incorrect code"
//	@Failure		409		{object}	twofasdk.ErrorResponse		"already enabled"
//	@Failure		500		{object}	twofasdk.ErrorResponse		"internal server error"
//	@Router			/v1/2fa/setup/confirm [post].
func (h *SetupHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Code == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.TwoFactorService.ConfirmSetup(ctx, req.PrincipalID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingSetup):
			twofasdk.ErrNoPendingSetup.WriteError(w)
		case errors.Is(err, service.ErrCodeMismatch), errors.Is(err, service.ErrReplayedToken):
			twofasdk.ErrInvalidCode.WriteError(w)
		case errors.Is(err, service.ErrAlreadyEnabled):
			twofasdk.ErrAlreadyEnabled.WriteError(w)
		default:
			log.Error("confirm setup failed", "principal_id", req.PrincipalID, "err", err)
			twofasdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, twofasdk.ConfirmResponse{Enabled: true})
}

// timeFormat is RFC 3339 with second precision, matching what the SDK
// documents.
const timeFormat = "2006-01-02T15:04:05Z07:00"
