package auth

import (
	"time"

	"chat-relay/domain"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates the HS256 tokens used for session
// authentication. The key comes from configuration, never from source.
type TokenManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{key: []byte(secret), issuer: issuer, ttl: ttl}
}

// Generate creates a signed JWT for a specific user.
func (m *TokenManager) Generate(user domain.User) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// Validate parses a JWT string and checks its signature and expiration.
func (m *TokenManager) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// User rebuilds the domain identity carried by a validated token.
func (c *CustomClaims) User() domain.User {
	return domain.User{
		ID:          c.UserID,
		DisplayName: c.DisplayName,
		Role:        domain.Role(c.Role),
	}
}
