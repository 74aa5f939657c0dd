package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/munhub-dev/munhub/internal/types"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is the verified identity recovered from a bearer token.
type Claims struct {
	UserID uint
	Role   types.Role
}

// TokenManager issues and verifies HS256 bearer tokens. There is no
// revocation list: a token stays valid until its expiry.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

const DefaultTTL = time.Hour * 168

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (tm *TokenManager) Issue(userID uint, role types.Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(tm.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return tm.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}

	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)

	if !ok {
		return Claims{}, ErrInvalidToken
	}

	userIDFloat, ok := mapClaims["user_id"].(float64)

	if !ok {
		return Claims{}, ErrInvalidToken
	}

	roleString, ok := mapClaims["role"].(string)

	if !ok || !types.ValidRole(types.Role(roleString)) {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: uint(userIDFloat), Role: types.Role(roleString)}, nil
}
