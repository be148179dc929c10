package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/harborauth/twofa/pkg/cryptox"
	"github.com/harborauth/twofa/pkg/idx"
	"github.com/harborauth/twofa/pkg/jwtx"
)

// InitAssertionSigner generates the Ed25519 key pair used to sign assertion
// tokens. Keys are ephemeral: minted assertions become unverifiable when the
// service restarts, which is acceptable for tokens that live minutes.
// Downstream verifiers refetch the public key from /v1/2fa/assertion-key.
func InitAssertionSigner(cfg Config, logger *slog.Logger) (*jwtx.Signer, error) {
	// Configure the master key path before anything touches sealed secrets
	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	}

	pemKey, err := cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, fmt.Errorf("failed to generate assertion key: %w", err)
	}

	kid := strings.ToLower(idx.New().String())
	signer, err := jwtx.NewSigner(kid, pemKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load assertion signer: %w", err)
	}

	logger.Info("assertion signing key generated", "kid", signer.KID(), "algorithm", "EdDSA")
	return signer, nil
}
