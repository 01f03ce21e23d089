package auth

import "errors"

var (
	// ErrInvalidToken covers every bearer verification failure: bad
	// signature, disallowed algorithm, wrong issuer, expiry, malformed token
	// and unresolvable signing key.
	ErrInvalidToken = errors.New("invalid token")

	// ErrKeyResolution means the signing key could not be obtained: the JWKS
	// endpoint is unreachable, the kid is unknown, or the fetch quota is spent.
	// Verification failures caused by it wrap both this and ErrInvalidToken.
	ErrKeyResolution = errors.New("signing key resolution failed")
)
