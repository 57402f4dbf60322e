// Package common contains shared constants and sentinel errors used across
// secanalytics components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header value.
const BearerPrefix = "Bearer "

// Roles understood by the access-token middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ServiceVersion is reported by the health and stats endpoints.
const ServiceVersion = "1.0.0"
