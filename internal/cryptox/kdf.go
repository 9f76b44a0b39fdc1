package cryptox

import (
	"crypto/sha256"
	"io"

	"github.com/dmitrijs2005/postscript/internal/common"
	"golang.org/x/crypto/hkdf"
)

// kekInfo is the fixed HKDF domain-separation label. Changing it would make
// every stored envelope undecryptable.
const kekInfo = "postscript-kek"

// DeriveKEK combines the server-held secret share and the caller-supplied
// share into a 256-bit key-encryption key using HKDF-SHA256 with the given
// per-envelope salt. The server share always comes first in the key material.
//
// The derivation is deterministic: identical shares and salt always yield the
// identical key, which is what lets stored envelopes be decrypted without the
// derived key ever being persisted.
//
// Returns common.ErrInvalidShare if either share is empty. Neither share alone
// is sufficient to reconstruct the key.
func DeriveKEK(serverShare, callerShare string, salt []byte) ([]byte, error) {
	if serverShare == "" || callerShare == "" {
		return nil, common.ErrInvalidShare
	}

	r := hkdf.New(sha256.New, []byte(serverShare+callerShare), salt, []byte(kekInfo))

	kek := make([]byte, KeySize)
	if _, err := io.ReadFull(r, kek); err != nil {
		return nil, err
	}
	return kek, nil
}
