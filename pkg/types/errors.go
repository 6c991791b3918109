package types

import "errors"

// Sentinel errors shared across the gateway. Handlers map these to HTTP
// status codes at the request boundary; everything else is a 500.
var (
	// ErrUnauthorized means no valid session accompanied the request
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConnected means the user has no active connection for the platform
	ErrNotConnected = errors.New("platform not connected")

	// ErrAuthExpired means a token refresh failed or no refresh token exists;
	// the user must reconnect the account
	ErrAuthExpired = errors.New("authorization expired, reconnect your account")

	// ErrUpstream is a non-auth failure from a provider data endpoint
	ErrUpstream = errors.New("upstream provider error")

	// ErrDuplicatePin means the message is already pinned for this user
	ErrDuplicatePin = errors.New("message already pinned")

	// ErrStateInvalid means the OAuth state was unknown, expired, or reused
	ErrStateInvalid = errors.New("invalid or expired oauth state")
)
