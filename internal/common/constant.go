// Package common contains shared constants and sentinel errors used across
// TaskVault components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header value.
const BearerPrefix = "Bearer "
