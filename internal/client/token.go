package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the access token is a JWT whose exp claim is
// already in the past. The signature is NOT verified; only the server can do
// that, and this check exists purely to skip a doomed round trip. Opaque
// (non-JWT) tokens and tokens without exp report false.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
