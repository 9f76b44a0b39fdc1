// Package services implements the application services behind the HTTP API:
// split-secret envelope crypto, asset and recipient management, heartbeat
// lifecycle, the scheduled sweep, and release publication.
package services

import (
	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/cryptox"
	"github.com/dmitrijs2005/postscript/internal/envelope"
)

// CryptoService performs envelope encryption of asset payloads. The
// server-held secret share is injected at construction; the caller share
// arrives with every request and is never retained.
//
// Calls share no mutable state and may run fully in parallel.
type CryptoService struct {
	serverShare string
}

func NewCryptoService(serverShare string) *CryptoService {
	return &CryptoService{serverShare: serverShare}
}

// EncryptForStorage seals plaintext into an opaque envelope string. A fresh
// salt is generated per call, the KEK is derived from the two shares, and the
// owner's user id is bound in as associated data.
func (s *CryptoService) EncryptForStorage(callerShare, plaintext, userID string) (string, error) {
	if callerShare == "" {
		return "", common.ErrInvalidShare
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return "", err
	}

	kek, err := cryptox.DeriveKEK(s.serverShare, callerShare, salt)
	if err != nil {
		return "", err
	}
	defer cryptox.Wipe(kek)

	env, err := envelope.Encrypt(kek, []byte(plaintext), salt, []byte(userID))
	if err != nil {
		return "", err
	}

	return envelope.Marshal(env)
}

// DecryptFromStorage reverses EncryptForStorage. The same two shares must be
// supplied again; the salt comes from the stored envelope. Version checks
// happen before any key derivation, and all crypto failures surface as
// common.ErrDecryptionFailed.
func (s *CryptoService) DecryptFromStorage(callerShare, envelopeString, userID string) (string, error) {
	if callerShare == "" {
		return "", common.ErrInvalidShare
	}

	env, err := envelope.Parse(envelopeString)
	if err != nil {
		return "", err
	}

	salt, err := env.SaltBytes()
	if err != nil {
		return "", err
	}

	kek, err := cryptox.DeriveKEK(s.serverShare, callerShare, salt)
	if err != nil {
		return "", err
	}
	defer cryptox.Wipe(kek)

	plaintext, err := env.Decrypt(kek, []byte(userID))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
