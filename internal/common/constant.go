// Package common contains shared constants and sentinel errors used across
// Postscript components.
package common

// AuthHeaderName carries the bearer session token on API requests.
const AuthHeaderName = "Authorization"

// ShareHeaderName carries the caller's secret share on sensitive operations.
// The value is never persisted or logged server-side.
const ShareHeaderName = "X-HSM-Secret"
