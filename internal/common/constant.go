// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key used to
// carry the bearer token.
const AuthorizationHeaderName = "authorization"

// BearerPrefix is the optional scheme prefix in front of a token.
const BearerPrefix = "Bearer"
