package authclient

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry decodes the expiry claim of a JWT without verifying its
// signature. Verification belongs to the backend authority; the client only
// uses the claim to reject tokens that are locally known to be dead before
// spending a round trip on them. A token a local peek cannot reject still
// needs the remote validity check before it is trusted.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// tokenExpired reports whether a local peek proves the token is past expiry.
func tokenExpired(raw string, now time.Time) bool {
	exp, ok := TokenExpiry(raw)
	return ok && exp.Before(now)
}
