package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes what can be learned from a token without its signing key.
type TokenInfo struct {
	JWT       bool
	Subject   string
	ExpiresAt *time.Time
}

// Inspect decodes the claims of a JWT without verifying its signature.
// Opaque (non-JWT) tokens yield a TokenInfo with JWT == false.
func Inspect(token string) TokenInfo {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{}
	}

	info := TokenInfo{JWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info
}

// Expired reports whether the token carries an expiry that is not after now.
func (i TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !i.ExpiresAt.After(now)
}
