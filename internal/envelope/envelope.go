// Package envelope implements Postscript's versioned envelope encryption:
// each payload is encrypted under a fresh data-encryption key (DEK), and the
// DEK itself is wrapped under a key-encryption key (KEK) derived from the two
// secret shares.
//
// The two AEAD operations use independent nonces, so a wrapped DEK can later
// be re-wrapped under a rotated KEK without touching the payload ciphertext.
//
// The external form is a flat JSON object with fixed field names
// (v, dekEnc, iv, payloadEnc, salt); dekEnc is two base64 segments joined by
// a literal "." (nonce, then ciphertext). This exact shape is a compatibility
// contract for stored data and must not change without incrementing v.
package envelope

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/dmitrijs2005/postscript/internal/cryptox"
)

// CurrentVersion is the only envelope version this codec produces or accepts.
const CurrentVersion = 1

// Envelope is the versioned external representation of an encrypted payload.
// Instances are immutable once created.
type Envelope struct {
	Version    int    `json:"v"`
	DEKEnc     string `json:"dekEnc"`
	IV         string `json:"iv"`
	PayloadEnc string `json:"payloadEnc"`
	Salt       string `json:"salt"`
}

// Encrypt seals plaintext into a new envelope. A fresh DEK and two fresh
// nonces are generated per call; aad (the owner's user id) is bound into both
// AEAD operations so a ciphertext cannot be decrypted in another user's
// context even if the same keys were somehow reused.
func Encrypt(kek, plaintext, salt, aad []byte) (*Envelope, error) {
	dek, err := cryptox.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer cryptox.Wipe(dek)

	iv, err := cryptox.GenerateNonce()
	if err != nil {
		return nil, err
	}

	payloadEnc, err := cryptox.Seal(dek, iv, plaintext, aad)
	if err != nil {
		return nil, err
	}

	dekIV, err := cryptox.GenerateNonce()
	if err != nil {
		return nil, err
	}

	dekEnc, err := cryptox.Seal(kek, dekIV, dek, aad)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Version:    CurrentVersion,
		DEKEnc:     b64(dekIV) + "." + b64(dekEnc),
		IV:         b64(iv),
		PayloadEnc: b64(payloadEnc),
		Salt:       b64(salt),
	}, nil
}

// Decrypt unwraps the DEK under kek and then opens the payload ciphertext.
// The version is checked before any cryptographic operation. Every
// authentication, decoding, or key failure collapses to
// common.ErrDecryptionFailed so the error surface never reveals whether the
// key was wrong or the data was tampered with.
func (e *Envelope) Decrypt(kek, aad []byte) ([]byte, error) {
	if e.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, e.Version)
	}

	dekIVb64, dekEncb64, ok := strings.Cut(e.DEKEnc, ".")
	if !ok {
		return nil, common.ErrDecryptionFailed
	}

	dekIV, err := unb64(dekIVb64)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	dekEnc, err := unb64(dekEncb64)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	dek, err := cryptox.Open(kek, dekIV, dekEnc, aad)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	defer cryptox.Wipe(dek)

	iv, err := unb64(e.IV)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	payloadEnc, err := unb64(e.PayloadEnc)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}

	plaintext, err := cryptox.Open(dek, iv, payloadEnc, aad)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}

// SaltBytes decodes the per-envelope HKDF salt.
func (e *Envelope) SaltBytes() ([]byte, error) {
	salt, err := unb64(e.Salt)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return salt, nil
}

// Marshal renders the envelope in its external JSON form.
func Marshal(e *Envelope) (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse decodes the external JSON form. Unknown versions are rejected
// outright rather than best-effort parsed.
func Parse(s string) (*Envelope, error) {
	e := &Envelope{}
	if err := json.Unmarshal([]byte(s), e); err != nil {
		return nil, fmt.Errorf("malformed envelope: %w", err)
	}
	if e.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", common.ErrUnsupportedVersion, e.Version)
	}
	return e, nil
}

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func unb64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
