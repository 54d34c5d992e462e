// Package common contains shared constants and sentinel errors used across
// the ulak client packages.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"
	// BearerScheme prefixes the credential inside AuthorizationHeader.
	BearerScheme = "Bearer"

	// AccessTokenKey is the durable storage key of the bearer credential.
	AccessTokenKey = "ulak_access_token"
	// MustChangePasswordKey is the durable storage key of the
	// must-change-password flag ("true" / "false").
	MustChangePasswordKey = "ulak_must_change_password"
)
