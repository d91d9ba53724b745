package auth

import "errors"

// Verification failures are distinguishable so callers can decide whether a
// refresh-and-retry makes sense (expired) or the request is simply hostile
// (bad signature).
var (
	ErrNoToken              = errors.New("no bearer token provided")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidSignature     = errors.New("token signature verification failed")
	ErrAuthenticationFailed = errors.New("invalid or expired token")
)
