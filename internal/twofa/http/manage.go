package http

import (
	"encoding/json"
	"net/http"

	"github.com/harborauth/twofa/internal/twofa/service"
	"github.com/harborauth/twofa/pkg/httpx"
	"github.com/harborauth/twofa/pkg/slogx"
	"github.com/harborauth/twofa/pkg/twofasdk"
)

// ManagementHandler covers disable, backup-code regeneration and the
// administrative lockout reset.
type ManagementHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleDisable handles POST /v1/2fa/disable
//
//	@Summary		Disable two-factor authentication
//	@Description	Removes the principal's factor and all backup codes after a final code
//	@Description	verification. Re-enrollment runs the full setup flow again.
//	@Tags			Management
//	@Accept			json
//	@Produce		json
//	@Param			request	body	twofasdk.DisableRequest	true	"principal and code"
//	@Success		204		"factor removed"
//	@Failure		400		{object}	twofasdk.ErrorResponse	"malformed request"
//	@Failure		401		{object}	twofasdk.ErrorResponse	"incorrect code"
//	@Failure		409		{object}	twofasdk.ErrorResponse	"not enabled"
//	@Failure		429		{object}	twofasdk.ErrorResponse	"locked out"
//	@Failure		500		{object}	twofasdk.ErrorResponse	"internal server error"
//	@Router			/v1/2fa/disable [post].
func (h *ManagementHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.DisableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Code == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.TwoFactorService.Disable(ctx, req.PrincipalID, req.Code); err != nil {
		writeChallengeError(w, log, req.PrincipalID, err, twofasdk.ErrInvalidCode)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerate handles POST /v1/2fa/backup-codes/regenerate
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces the remaining backup codes with a fresh set after a code
//	@Description	verification. The old set is invalidated wholesale and the new set is
//	@Description	shown exactly once.
//	@Tags			Management
//	@Accept			json
//	@Produce		json
//	@Param			request	body		twofasdk.RegenerateRequest	true	"principal and code"
//	@Success		200		{object}	twofasdk.RegenerateResponse	"fresh backup codes"
//	@Failure		400		{object}	twofasdk.ErrorResponse		"malformed request"
//	@Failure		401		{object}	twofasdk.ErrorResponse		"incorrect code"
//	@Failure		409		{object}	twofasdk.ErrorResponse		"not enabled"
//	@Failure		429		{object}	twofasdk.ErrorResponse		"locked out"
//	@Failure		500		{object}	twofasdk.ErrorResponse		"internal server error"
//	@Router			/v1/2fa/backup-codes/regenerate [post].
func (h *ManagementHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.RegenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Code == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	codes, err := h.TwoFactorService.RegenerateBackupCodes(ctx, req.PrincipalID, req.Code)
	if err != nil {
		writeChallengeError(w, log, req.PrincipalID, err, twofasdk.ErrInvalidCode)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, twofasdk.RegenerateResponse{BackupCodes: codes})
}

// HandleUnlock handles POST /v1/2fa/admin/unlock
//
//	@Summary		Clear a principal's lockout
//	@Description	Out-of-band administrative reset of the verification lockout. Lockouts
//	@Description	never self-heal before their window elapses.
//	@Tags			Management
//	@Accept			json
//	@Produce		json
//	@Param			request	body	twofasdk.UnlockRequest	true	"principal"
//	@Success		204		"lockout cleared"
//	@Failure		400		{object}	twofasdk.ErrorResponse	"malformed request"
//	@Failure		500		{object}	twofasdk.ErrorResponse	"internal server error"
//	@Router			/v1/2fa/admin/unlock [post].
func (h *ManagementHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.TwoFactorService.AdminUnlock(ctx, req.PrincipalID); err != nil {
		log.Error("admin unlock failed", "principal_id", req.PrincipalID, "err", err)
		twofasdk.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
