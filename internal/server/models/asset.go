package models

import "time"

// AssetType classifies what kind of payload an asset carries.
type AssetType string

const (
	AssetTypeCrypto   AssetType = "crypto"   // wallet seed phrases, private keys
	AssetTypeTransfer AssetType = "transfer" // account transfer instructions
	AssetTypeMessage  AssetType = "message"  // personal messages to recipients
)

// Valid reports whether t is one of the known asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeCrypto, AssetTypeTransfer, AssetTypeMessage:
		return true
	}
	return false
}

// Asset is a user-owned sensitive record. EncryptedData holds the opaque
// envelope string produced by the crypto service; the server never stores or
// sees the plaintext.
type Asset struct {
	ID            string
	UserID        string
	Type          AssetType
	Name          string
	EncryptedData string
	EncryptedHint *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
