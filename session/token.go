package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway is the expiry slack applied when checking capability tokens,
// so a token is refreshed slightly before the backend would reject it.
const DefaultLeeway = 30 * time.Second

// TokenExpired reports whether a capability token's exp claim has passed.
//
// Capability tokens are JWT-shaped but never signature-verified here; the
// backend issued them and is trusted. An empty token is treated as expired
// (absence blocks use), while a token that cannot be parsed or carries no exp
// claim is assumed durable.
func TokenExpired(token string, leeway time.Duration) bool {
	if token == "" {
		return true
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Unix() >= exp.Unix()-int64(leeway.Seconds())
}
