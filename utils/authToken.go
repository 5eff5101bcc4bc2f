package utils

import (
	"fmt"
	"time"

	"github.com/o1egl/paseto"
	"github.com/pkg/errors"
)

const (
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

var (
	ErrTokenExpired           = errors.New("token expired")
	ErrInsufficientPermission = errors.New("insufficient permissions")
)

// TokenClaims is the payload carried by access and refresh tokens.
type TokenClaims struct {
	UserID uint      `json:"userId"`
	Roles  []string  `json:"roles"`
	Expiry time.Time `json:"expiry"`
}

// HasAnyRole reports whether the claims carry at least one of roles.
func (c *TokenClaims) HasAnyRole(roles ...string) bool {
	for _, want := range roles {
		for _, have := range c.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// TokenIssuer encrypts PASETO v2 local tokens with a symmetric key.
type TokenIssuer struct {
	key []byte
	v2  *paseto.V2
	now func() time.Time
}

// NewTokenIssuer requires a 32 byte key.
func NewTokenIssuer(key string) (*TokenIssuer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("SYMMETRIC_KEY must be 32 bytes long, got %d", len(key))
	}
	return &TokenIssuer{key: []byte(key), v2: paseto.NewV2(), now: time.Now}, nil
}

// GenerateTokens returns an access and a refresh token for the account.
func (t *TokenIssuer) GenerateTokens(userID uint, roles []string) (accessToken, refreshToken string, err error) {
	accessToken, err = t.generate(userID, roles, AccessTokenExpiry)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate access token")
	}
	refreshToken, err = t.generate(userID, roles, RefreshTokenExpiry)
	if err != nil {
		return "", "", errors.Wrap(err, "failed to generate refresh token")
	}
	return accessToken, refreshToken, nil
}

func (t *TokenIssuer) generate(userID uint, roles []string, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Roles:  roles,
		Expiry: t.now().Add(expiry),
	}
	return t.v2.Encrypt(t.key, claims, nil)
}

// ValidateToken decrypts the token, checks expiry and, when requiredRoles is
// not empty, that the claims hold one of them.
func (t *TokenIssuer) ValidateToken(token string, requiredRoles ...string) (*TokenClaims, error) {
	var claims TokenClaims
	if err := t.v2.Decrypt(token, t.key, &claims, nil); err != nil {
		return nil, errors.Wrap(err, "failed to decrypt token")
	}
	if t.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	if len(requiredRoles) > 0 && !claims.HasAnyRole(requiredRoles...) {
		return nil, ErrInsufficientPermission
	}
	return &claims, nil
}
