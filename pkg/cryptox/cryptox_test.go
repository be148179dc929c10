package cryptox_test

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/harborauth/twofa/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)
	require.Len(t, token, 22)

	other, err := cryptox.GenerateToken(cryptox.TokenSize128)
	require.NoError(t, err)
	require.NotEqual(t, token, other)

	_, err = cryptox.GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenDeterministic(t *testing.T) {
	fp := cryptox.FingerprintToken("JBSWY3DPEHPK3PXP")
	require.Len(t, fp, 43)
	require.Equal(t, fp, cryptox.FingerprintToken("JBSWY3DPEHPK3PXP"))
	require.NotEqual(t, fp, cryptox.FingerprintToken("JBSWY3DPEHPK3PXQ"))
}

func TestEncryptDecryptSecretRoundTrip(t *testing.T) {
	cryptox.ResetMasterKeyForTesting()
	t.Setenv("TWOFA_MASTER_KEY", "test-master-key")

	plaintext := []byte("JBSWY3DPEHPK3PXP")
	encrypted, err := cryptox.EncryptSecret(plaintext)
	require.NoError(t, err)
	require.NotContains(t, string(encrypted), string(plaintext))

	decrypted, err := cryptox.DecryptSecret(encrypted)
	require.NoError(t, err)
	require.Equal(t, plaintext, decrypted)
}

func TestDecryptSecretRejectsTampering(t *testing.T) {
	cryptox.ResetMasterKeyForTesting()
	t.Setenv("TWOFA_MASTER_KEY", "test-master-key")

	encrypted, err := cryptox.EncryptSecret([]byte("JBSWY3DPEHPK3PXP"))
	require.NoError(t, err)

	encrypted[len(encrypted)-1] ^= 0x01
	_, err = cryptox.DecryptSecret(encrypted)
	require.Error(t, err)

	_, err = cryptox.DecryptSecret([]byte("short"))
	require.Error(t, err)
}

func TestHashAndVerifyBackupCode(t *testing.T) {
	hash, err := cryptox.HashBackupCode("ABCD1234X")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, cryptox.VerifyBackupCode("ABCD1234X", hash))
	require.ErrorIs(t, cryptox.VerifyBackupCode("ABCD1234Y", hash), cryptox.ErrHashMismatch)

	// Same code hashes differently thanks to the per-hash salt.
	again, err := cryptox.HashBackupCode("ABCD1234X")
	require.NoError(t, err)
	require.NotEqual(t, hash, again)
}

func TestVerifyBackupCodeRejectsMalformedHash(t *testing.T) {
	require.Error(t, cryptox.VerifyBackupCode("ABCD1234X", "not-a-hash"))
	require.Error(t, cryptox.VerifyBackupCode("ABCD1234X", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA"))
}

func TestGenerateEd25519Key(t *testing.T) {
	pemBytes, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	block, _ := pem.Decode(pemBytes)
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	keyInterface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)

	key, ok := keyInterface.(ed25519.PrivateKey)
	require.True(t, ok)
	require.Equal(t, ed25519.PrivateKeySize, len(key))
}
