package infra

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenAudience is the audience of signed factory tokens.
const TokenAudience = "factory-printer"

// TokenSource supplies the credential sent with every order store call.
type TokenSource interface {
	Token() (string, error)
}

// SecretToken sends the shared secret itself.
type SecretToken string

func (s SecretToken) Token() (string, error) { return string(s), nil }

// SignedToken mints a short-lived HS256 token per call, keyed by the shared
// secret, so the secret itself never travels in a URL.
type SignedToken struct {
	Secret string
	Site   string
	TTL    time.Duration
	Now    func() time.Time
}

func (s SignedToken) Token() (string, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return SignSiteToken(s.Secret, s.Site, now(), ttl)
}

func SignSiteToken(secret, site string, now time.Time, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("token: empty secret")
	}
	claims := jwt.RegisteredClaims{
		Subject:   site,
		Audience:  jwt.ClaimStrings{TokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken accepts either the shared secret or a token signed with it and
// returns the caller's principal: "factory" for the bare secret, the token
// subject otherwise.
func VerifyToken(secret, token string, now time.Time) (string, bool) {
	if secret == "" || token == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(token)) == 1 {
		return "factory", true
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return "", false
	}
	if claims.Subject == "" {
		return "factory", true
	}
	return claims.Subject, true
}
