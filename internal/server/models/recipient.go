package models

import "time"

// Recipient is a designated receiver of a user's assets after delivery.
type Recipient struct {
	ID           string
	UserID       string
	Name         string
	Email        string
	Relationship *string
	AvatarURL    *string
	Verified     bool
	CreatedAt    time.Time
}

// AssetRecipient links an asset to a recipient. EncryptedPassword is reserved
// for a future recipient-side decryption capability and is not populated by
// any current operation.
type AssetRecipient struct {
	AssetID           string
	RecipientID       string
	EncryptedPassword *string
}
