package auth // package auth provides access-token and confirmation-code primitives

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/iliyamo/review-catalog/internal/permission"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short‑lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// ErrInvalidToken is returned by ParseAccessToken for any token that
// fails signature, expiry or claim-shape checks.
var ErrInvalidToken = errors.New("invalid access token")

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's identity and a TTL in minutes.  The JWT
// carries the subject (sub), username, role, superuser flag, expiration
// (exp) and issued-at (iat) claims.
func NewAccessToken(secret string, userID uint64, username, role string, superuser bool, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"su":       superuser,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a bearer token string and reconstructs the
// principal it was minted for.  The role claim is re-parsed through the
// closed role set so a tampered or legacy value degrades to plain user
// rather than escalating.
func ParseAccessToken(secret, raw string) (permission.Principal, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return permission.Anonymous, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return permission.Anonymous, ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return permission.Anonymous, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	su, _ := claims["su"].(bool)
	return permission.Principal{
		ID:            uint64(sub),
		Username:      username,
		Role:          permission.ParseRole(role),
		Superuser:     su,
		Authenticated: true,
	}, nil
}
