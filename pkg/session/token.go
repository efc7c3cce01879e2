package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenUsable reports whether the held token can still be replayed via
// `authenticate` at the given time. The claims are parsed without
// signature verification: the server is the authority on validity, this
// check only avoids replaying a token we already know has expired.
// Tokens that are not JWTs or carry no expiry are assumed usable.
func TokenUsable(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return now.Before(exp.Time)
}
