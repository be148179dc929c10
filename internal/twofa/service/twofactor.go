package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/harborauth/twofa/internal/twofa/domain"
	"github.com/harborauth/twofa/internal/twofa/store"
	"github.com/harborauth/twofa/pkg/backupcode"
	"github.com/harborauth/twofa/pkg/cryptox"
	"github.com/harborauth/twofa/pkg/idx"
	"github.com/harborauth/twofa/pkg/jwtx"
	"github.com/harborauth/twofa/pkg/lockout"
	"github.com/harborauth/twofa/pkg/otpx"
	"github.com/harborauth/twofa/pkg/replayguard"
	"github.com/harborauth/twofa/pkg/slogx"
)

const (
	// DefaultSessionTTL bounds how long an enrollment can sit unconfirmed.
	DefaultSessionTTL = 10 * time.Minute

	// DefaultBackupCodeCount is the set size issued per enrollment.
	DefaultBackupCodeCount = 10

	// maxSetupAttempts caps wrong codes against one setup session before it
	// is torn down and the principal must restart enrollment.
	maxSetupAttempts = 5
)

// TwoFactorService is the orchestrator: it sequences setup, confirmation and
// challenge verification, consulting the lockout tracker before any
// verification and the replay guard after a code matches. Shared mutable
// state lives entirely in the injected collaborators; the service itself is
// stateless and safe for concurrent use.
type TwoFactorService struct {
	Store   store.Store
	Engine  *otpx.Engine
	Replay  replayguard.Guard
	Lockout lockout.Tracker
	Signer  *jwtx.Signer
	Remote  *RemoteVerifier // optional fallback, may be nil

	Issuer          string
	SessionTTL      time.Duration
	BackupCodeCount int
	AssertionTTL    time.Duration

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *TwoFactorService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func (s *TwoFactorService) backupCodeCount() int {
	if s.BackupCodeCount > 0 {
		return s.BackupCodeCount
	}
	return DefaultBackupCodeCount
}

// BeginSetup starts enrollment for a principal: a fresh secret and backup
// code set are generated and returned to the caller, but nothing is
// committed to the credential store until ConfirmSetup proves the
// authenticator is provisioned. A previous unconfirmed session for the same
// principal is superseded.
func (s *TwoFactorService) BeginSetup(ctx context.Context, principalID, account string) (domain.EnrollmentStart, error) {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Credentials().GetCredential(ctx, principalID); err == nil {
		return domain.EnrollmentStart{}, ErrAlreadyEnabled
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.EnrollmentStart{}, fmt.Errorf("load credential: %w", err)
	}

	secret, err := otpx.GenerateSecret()
	if err != nil {
		return domain.EnrollmentStart{}, fmt.Errorf("generate secret: %w", err)
	}

	uri, err := otpx.BuildProvisioningURI(secret, s.Issuer, account)
	if err != nil {
		return domain.EnrollmentStart{}, err
	}

	sealed, err := sealSecret(secret)
	if err != nil {
		return domain.EnrollmentStart{}, fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}

	codes, err := backupcode.GenerateSet(s.backupCodeCount())
	if err != nil {
		return domain.EnrollmentStart{}, fmt.Errorf("generate backup codes: %w", err)
	}

	now := s.now()
	sess := domain.VerificationSession{
		ID:              idx.New().String(),
		PrincipalID:     principalID,
		Account:         account,
		Mode:            domain.ModeSetup,
		Step:            domain.StepAwaitingCode,
		SecretEncrypted: sealed,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.sessionTTL()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Superseding an abandoned session cascades its pending codes away.
		if err := tx.Sessions().DeleteSetupSessions(ctx, principalID); err != nil {
			return fmt.Errorf("supersede setup sessions: %w", err)
		}
		if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
			return fmt.Errorf("create setup session: %w", err)
		}
		for _, code := range codes {
			hash, err := cryptox.HashBackupCode(backupcode.Normalize(code))
			if err != nil {
				return fmt.Errorf("hash backup code: %w", err)
			}
			bc := domain.BackupCode{
				ID:          idx.New().String(),
				PrincipalID: principalID,
				CodeHash:    hash,
				SessionID:   &sess.ID,
				CreatedAt:   now,
			}
			if err := tx.BackupCodes().CreateBackupCode(ctx, bc); err != nil {
				return fmt.Errorf("store backup code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.EnrollmentStart{}, err
	}

	log.Info("two-factor setup started", "principal_id", principalID)

	return domain.EnrollmentStart{
		SessionID:       sess.ID,
		Secret:          secret,
		ProvisioningURI: uri,
		BackupCodes:     codes,
		ExpiresAt:       sess.ExpiresAt,
	}, nil
}

// ConfirmSetup verifies a code against the principal's uncommitted secret
// and, on success, commits the secret and backup codes atomically. A wrong
// code leaves the credential store untouched; too many wrong codes tear the
// session down entirely.
func (s *TwoFactorService) ConfirmSetup(ctx context.Context, principalID, code string) error {
	log := slogx.FromContext(ctx)

	sess, err := s.Store.Sessions().GetSetupSession(ctx, principalID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNoPendingSetup
	} else if err != nil {
		return fmt.Errorf("load setup session: %w", err)
	}

	secret, err := openSecret(sess.SecretEncrypted)
	if err != nil {
		return fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}

	now := s.now()
	window, err := s.Engine.VerifyAt(secret, code, now)
	if errors.Is(err, otpx.ErrNoMatch) {
		return s.recordSetupFailure(ctx, sess)
	} else if err != nil {
		return err
	}

	// The confirmation code burns its window too, so it cannot be replayed
	// into the first login challenge.
	admitted, err := s.Replay.Admit(ctx, cryptox.FingerprintToken(otpx.NormalizeSecret(secret)), code, window)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if !admitted {
		log.Warn("replayed code during setup confirmation", "principal_id", principalID)
		return ErrReplayedToken
	}

	cred := domain.Credential{
		PrincipalID:     principalID,
		SecretEncrypted: sess.SecretEncrypted,
		Issuer:          s.Issuer,
		Account:         sess.Account,
		EnabledAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Commit codes before dropping the session or the FK cascade would
		// take them with it.
		if err := tx.BackupCodes().CommitSessionBackupCodes(ctx, sess.ID); err != nil {
			return fmt.Errorf("commit backup codes: %w", err)
		}
		if err := tx.Credentials().CreateCredential(ctx, cred); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyEnabled
			}
			return fmt.Errorf("commit credential: %w", err)
		}
		return tx.Sessions().DeleteSession(ctx, sess.ID)
	})
	if err != nil {
		return err
	}

	log.Info("two-factor enabled", "principal_id", principalID)
	return nil
}

func (s *TwoFactorService) recordSetupFailure(ctx context.Context, sess domain.VerificationSession) error {
	updated, err := s.Store.Sessions().IncrementSessionAttempts(ctx, sess.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("record setup failure: %w", err)
	}
	if updated.Attempts >= maxSetupAttempts {
		// Pending codes cascade with the session; the principal restarts.
		if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
			return fmt.Errorf("tear down setup session: %w", err)
		}
		slogx.FromContext(ctx).Warn("setup session exhausted",
			"principal_id", sess.PrincipalID, "attempts", updated.Attempts)
	}
	return ErrCodeMismatch
}

// Challenge verifies a TOTP code for an enabled principal. The lockout
// tracker is consulted first and no verification happens at all while
// locked. A matching code is then checked against the replay guard before it
// is accepted. Success mints a short-lived assertion token.
func (s *TwoFactorService) Challenge(ctx context.Context, principalID, code string) (domain.ChallengeResult, error) {
	log := slogx.FromContext(ctx)

	if err := s.checkLockout(ctx, principalID); err != nil {
		return domain.ChallengeResult{}, err
	}

	cred, err := s.Store.Credentials().GetCredential(ctx, principalID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ChallengeResult{}, ErrNotEnabled
	} else if err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("load credential: %w", err)
	}

	now := s.now()
	var windows []int64

	// The replay guard is keyed on the plaintext secret when it is
	// available, matching the fingerprint ConfirmSetup burned its window
	// under. When the secret cannot be opened locally the sealed form keys
	// the guard instead; it is just as stable per credential.
	fingerprint := cryptox.FingerprintToken(cred.SecretEncrypted)

	secret, err := openSecret(cred.SecretEncrypted)
	if err != nil {
		err = fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	} else {
		fingerprint = cryptox.FingerprintToken(otpx.NormalizeSecret(secret))
		var window int64
		window, err = s.Engine.VerifyAt(secret, code, now)
		if err == nil {
			windows = []int64{window}
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, otpx.ErrNoMatch):
		return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrCodeMismatch)
	case errors.Is(err, otpx.ErrCryptoBackend) && s.Remote != nil:
		// Local crypto is unavailable; defer to the remote verifier.
		valid, rerr := s.Remote.Verify(ctx, cred.SecretEncrypted, code, cred.Account, now)
		if rerr != nil {
			return domain.ChallengeResult{}, rerr
		}
		if !valid {
			return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrCodeMismatch)
		}
		// The remote verifier does not report which window matched, so the
		// code gets burned in every tolerated window; otherwise it could be
		// admitted again one window later.
		cur := s.Engine.Window(now)
		tol := int64(s.Engine.Tolerance())
		for w := cur - tol; w <= cur+tol; w++ {
			windows = append(windows, w)
		}
	default:
		return domain.ChallengeResult{}, err
	}

	for _, w := range windows {
		admitted, aerr := s.Replay.Admit(ctx, fingerprint, code, w)
		if aerr != nil {
			return domain.ChallengeResult{}, fmt.Errorf("replay guard: %w", aerr)
		}
		if !admitted {
			log.Warn("replayed code rejected", "principal_id", principalID, "window", w)
			return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrReplayedToken)
		}
	}

	if err := s.Lockout.RecordSuccess(ctx, principalID); err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("reset lockout: %w", err)
	}

	token, err := s.mintAssertion(principalID, jwtx.AMROTP, now)
	if err != nil {
		return domain.ChallengeResult{}, err
	}

	log.Info("challenge succeeded", "principal_id", principalID, "method", jwtx.AMROTP)
	return domain.ChallengeResult{
		PrincipalID:    principalID,
		Method:         jwtx.AMROTP,
		AssertionToken: token,
	}, nil
}

// ChallengeWithBackupCode is the recovery fallback: a single-use code
// replaces the TOTP check, with the same lockout bookkeeping. Exactly one
// concurrent consumer of a given code succeeds.
func (s *TwoFactorService) ChallengeWithBackupCode(ctx context.Context, principalID, code string) (domain.ChallengeResult, error) {
	log := slogx.FromContext(ctx)

	if err := s.checkLockout(ctx, principalID); err != nil {
		return domain.ChallengeResult{}, err
	}

	if _, err := s.Store.Credentials().GetCredential(ctx, principalID); errors.Is(err, store.ErrNotFound) {
		return domain.ChallengeResult{}, ErrNotEnabled
	} else if err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("load credential: %w", err)
	}

	if !backupcode.ValidateFormat(code) {
		return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrBackupCodeInvalidFormat)
	}
	normalized := backupcode.Normalize(code)

	all, err := s.Store.BackupCodes().ListBackupCodes(ctx, principalID)
	if err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("list backup codes: %w", err)
	}

	var matched *domain.BackupCode
	for i := range all {
		if cryptox.VerifyBackupCode(normalized, all[i].CodeHash) == nil {
			matched = &all[i]
			break
		}
	}

	switch {
	case matched == nil:
		return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrBackupCodeNotFound)
	case matched.Spent():
		log.Warn("spent backup code presented", "principal_id", principalID)
		return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrBackupCodeAlreadyUsed)
	}

	if err := s.Store.BackupCodes().ConsumeBackupCode(ctx, matched.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race to a concurrent consumer.
			return domain.ChallengeResult{}, s.recordChallengeFailure(ctx, principalID, ErrBackupCodeAlreadyUsed)
		}
		return domain.ChallengeResult{}, fmt.Errorf("consume backup code: %w", err)
	}

	if err := s.Lockout.RecordSuccess(ctx, principalID); err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("reset lockout: %w", err)
	}

	remaining, err := s.Store.BackupCodes().CountActiveBackupCodes(ctx, principalID)
	if err != nil {
		return domain.ChallengeResult{}, fmt.Errorf("count backup codes: %w", err)
	}

	now := s.now()
	token, err := s.mintAssertion(principalID, jwtx.AMRBackupCode, now)
	if err != nil {
		return domain.ChallengeResult{}, err
	}

	log.Info("backup code challenge succeeded",
		"principal_id", principalID, "remaining_codes", remaining)
	return domain.ChallengeResult{
		PrincipalID:          principalID,
		Method:               jwtx.AMRBackupCode,
		AssertionToken:       token,
		BackupCodesRemaining: remaining,
	}, nil
}

// Disable removes the principal's factor after a successful TOTP
// verification, deleting the credential and every backup code together.
// Re-enrollment afterwards runs the full setup flow again.
func (s *TwoFactorService) Disable(ctx context.Context, principalID, code string) error {
	if err := s.checkLockout(ctx, principalID); err != nil {
		return err
	}

	if err := s.verifyCommitted(ctx, principalID, code); err != nil {
		return err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, principalID); err != nil {
			return fmt.Errorf("delete backup codes: %w", err)
		}
		if err := tx.Credentials().DeleteCredential(ctx, principalID); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("two-factor disabled", "principal_id", principalID)
	return nil
}

// RegenerateBackupCodes replaces the principal's remaining codes with a
// fresh set after a successful TOTP verification. The old set is invalidated
// wholesale.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, principalID, code string) ([]string, error) {
	if err := s.checkLockout(ctx, principalID); err != nil {
		return nil, err
	}

	if err := s.verifyCommitted(ctx, principalID, code); err != nil {
		return nil, err
	}

	codes, err := backupcode.GenerateSet(s.backupCodeCount())
	if err != nil {
		return nil, fmt.Errorf("generate backup codes: %w", err)
	}

	now := s.now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, principalID); err != nil {
			return fmt.Errorf("delete backup codes: %w", err)
		}
		for _, c := range codes {
			hash, err := cryptox.HashBackupCode(backupcode.Normalize(c))
			if err != nil {
				return fmt.Errorf("hash backup code: %w", err)
			}
			bc := domain.BackupCode{
				ID:          idx.New().String(),
				PrincipalID: principalID,
				CodeHash:    hash,
				CreatedAt:   now,
			}
			if err := tx.BackupCodes().CreateBackupCode(ctx, bc); err != nil {
				return fmt.Errorf("store backup code: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("backup codes regenerated", "principal_id", principalID)
	return codes, nil
}

// AdminUnlock clears a principal's lockout entry. Lockouts never self-heal
// before the window elapses; this is the out-of-band reset path.
func (s *TwoFactorService) AdminUnlock(ctx context.Context, principalID string) error {
	if err := s.Lockout.RecordSuccess(ctx, principalID); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	slogx.FromContext(ctx).Info("lockout cleared by admin", "principal_id", principalID)
	return nil
}

// checkLockout fails fast with RateLimitedError while the principal is
// locked.
func (s *TwoFactorService) checkLockout(ctx context.Context, principalID string) error {
	status, err := s.Lockout.Check(ctx, principalID)
	if err != nil {
		return fmt.Errorf("lockout check: %w", err)
	}
	if status.Locked {
		return &RateLimitedError{RetryAfter: status.RetryAfter}
	}
	return nil
}

// recordChallengeFailure books the failure against the principal and passes
// the original outcome through.
func (s *TwoFactorService) recordChallengeFailure(ctx context.Context, principalID string, outcome error) error {
	if _, err := s.Lockout.RecordFailure(ctx, principalID); err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return outcome
}

// verifyCommitted runs a TOTP verification against the committed credential
// with full replay and lockout bookkeeping but without minting an assertion.
func (s *TwoFactorService) verifyCommitted(ctx context.Context, principalID, code string) error {
	cred, err := s.Store.Credentials().GetCredential(ctx, principalID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotEnabled
	} else if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}

	secret, err := openSecret(cred.SecretEncrypted)
	if err != nil {
		return fmt.Errorf("%w: %v", otpx.ErrCryptoBackend, err)
	}

	window, err := s.Engine.VerifyAt(secret, code, s.now())
	if errors.Is(err, otpx.ErrNoMatch) {
		return s.recordChallengeFailure(ctx, principalID, ErrCodeMismatch)
	} else if err != nil {
		return err
	}

	admitted, err := s.Replay.Admit(ctx, cryptox.FingerprintToken(otpx.NormalizeSecret(secret)), code, window)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if !admitted {
		return s.recordChallengeFailure(ctx, principalID, ErrReplayedToken)
	}

	return s.Lockout.RecordSuccess(ctx, principalID)
}

func (s *TwoFactorService) mintAssertion(principalID, method string, now time.Time) (string, error) {
	if s.Signer == nil {
		return "", nil
	}
	claims := jwtx.NewAssertionClaims(principalID, s.Issuer, []string{method}, s.AssertionTTL, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("mint assertion: %w", err)
	}
	return token, nil
}

// sealSecret encrypts a plaintext Base32 secret for storage.
func sealSecret(secret string) (string, error) {
	sealed, err := cryptox.EncryptSecret([]byte(secret))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// openSecret reverses sealSecret.
func openSecret(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", err
	}
	plain, err := cryptox.DecryptSecret(raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
