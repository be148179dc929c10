package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/harborauth/twofa/internal/twofa/service"
	"github.com/harborauth/twofa/pkg/httpx"
	"github.com/harborauth/twofa/pkg/slogx"
	"github.com/harborauth/twofa/pkg/twofasdk"
)

// ChallengeHandler handles login-time verification.
type ChallengeHandler struct {
	TwoFactorService *service.TwoFactorService
}

// HandleChallenge handles POST /v1/2fa/challenge
//
//	@Summary		Verify a TOTP code
//	@Description	Verifies a six-digit code for an enabled principal and mints a
//	@Description	short-lived assertion token. Mismatches, replays and unknown codes all
//	@Description	come back as the same incorrect-code error; lockout is reported with a
//	@Description	Retry-After header.
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			request	body		twofasdk.ChallengeRequest	true	"principal and code"
//	@Success		200		{object}	twofasdk.ChallengeResponse	"assertion token"
//	@Failure		400		{object}	twofasdk.ErrorResponse		"malformed request"
//	@Failure		401		{object}	twofasdk.ErrorResponse		"incorrect code"
//	@Failure		409		{object}	twofasdk.ErrorResponse		"not enabled"
//	@Failure		429		{object}	twofasdk.ErrorResponse		"locked out"
//	@Failure		500		{object}	twofasdk.ErrorResponse		"internal server error"
//	@Router			/v1/2fa/challenge [post].
func (h *ChallengeHandler) HandleChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Code == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.TwoFactorService.Challenge(ctx, req.PrincipalID, req.Code)
	if err != nil {
		writeChallengeError(w, log, req.PrincipalID, err, twofasdk.ErrInvalidCode)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, twofasdk.ChallengeResponse{
		AssertionToken: res.AssertionToken,
		Method:         res.Method,
	})
}

// HandleBackupChallenge handles POST /v1/2fa/challenge/backup
//
//	@Summary		Verify a backup recovery code
//	@Description	Consumes a single-use backup code in place of a TOTP code. Format
//	@Description	errors, unknown codes and already-spent codes are indistinguishable to
//	@Description	the caller.
//	@Tags			Challenge
//	@Accept			json
//	@Produce		json
//	@Param			request	body		twofasdk.ChallengeRequest	true	"principal and backup code"
//	@Success		200		{object}	twofasdk.ChallengeResponse	"assertion token and remaining code count"
//	@Failure		400		{object}	twofasdk.ErrorResponse		"malformed request"
//	@Failure		401		{object}	twofasdk.ErrorResponse		"backup code incorrect"
//	@Failure		409		{object}	twofasdk.ErrorResponse		"not enabled"
//	@Failure		429		{object}	twofasdk.ErrorResponse		"locked out"
//	@Failure		500		{object}	twofasdk.ErrorResponse		"internal server error"
//	@Router			/v1/2fa/challenge/backup [post].
func (h *ChallengeHandler) HandleBackupChallenge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twofasdk.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrincipalID == "" || req.Code == "" {
		twofasdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.TwoFactorService.ChallengeWithBackupCode(ctx, req.PrincipalID, req.Code)
	if err != nil {
		writeChallengeError(w, log, req.PrincipalID, err, twofasdk.ErrBackupCodeIncorrect)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, twofasdk.ChallengeResponse{
		AssertionToken:       res.AssertionToken,
		Method:               res.Method,
		BackupCodesRemaining: res.BackupCodesRemaining,
	})
}

// writeChallengeError maps service outcomes onto the wire. Every
// verification failure kind collapses into the one incorrect-code response;
// only lockout is distinguishable, carrying the remaining duration.
func writeChallengeError(w http.ResponseWriter, log *slog.Logger, principalID string, err error, incorrect *twofasdk.APIError) {
	if rle, ok := service.IsRateLimited(err); ok {
		twofasdk.NewRateLimitedError(rle.RetryAfter).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrNotEnabled):
		twofasdk.ErrNotEnabled.WriteError(w)
	case errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrReplayedToken),
		errors.Is(err, service.ErrBackupCodeInvalidFormat),
		errors.Is(err, service.ErrBackupCodeAlreadyUsed),
		errors.Is(err, service.ErrBackupCodeNotFound):
		log.Warn("verification failed", "principal_id", principalID)
		incorrect.WriteError(w)
	default:
		log.Error("challenge failed", "principal_id", principalID, "err", err)
		twofasdk.ErrServerError.WriteError(w)
	}
}
