package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/BorisDmv/techscribe-api/internal/models"
)

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the authenticated identity carried by a token. Subject holds
// the user id.
type Claims struct {
	Roles models.Roles `json:"roles"`
	Type  string       `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the identity the claims belong to.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenManager signs and verifies access and refresh tokens. Each kind uses
// its own secret so a refresh token is never accepted as an access token.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager validates the secrets and returns a configured manager.
func NewTokenManager(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("secret key too short")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenManager{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}, nil
}

func (m *TokenManager) AccessToken(userID string, roles models.Roles) (string, error) {
	return m.sign(userID, roles, accessTokenType, m.accessTTL, m.accessSecret)
}

func (m *TokenManager) RefreshToken(userID string) (string, error) {
	return m.sign(userID, nil, refreshTokenType, m.refreshTTL, m.refreshSecret)
}

func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, accessTokenType, m.accessSecret)
}

func (m *TokenManager) ParseRefresh(token string) (*Claims, error) {
	return m.parse(token, refreshTokenType, m.refreshSecret)
}

func (m *TokenManager) sign(userID string, roles models.Roles, kind string, ttl time.Duration, secret []byte) (string, error) {
	now := m.now()
	claims := Claims{
		Roles: roles,
		Type:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (m *TokenManager) parse(tokenString, kind string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != kind || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
