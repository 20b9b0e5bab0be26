package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// AccessTokenClaims carries the merchant identity inside a bearer token.
type AccessTokenClaims struct {
	jwt.StandardClaims
	UserID uint `json:"user_id"`
}

// GenerateAccessToken signs an HS256 bearer token for the given user.
func GenerateAccessToken(userID uint, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required for token generation")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessTokenClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		UserID: userID,
	})

	return token.SignedString([]byte(secret))
}

// VerifyAccessToken parses and validates a bearer token and returns its claims.
func VerifyAccessToken(tokenString, secret string) (*AccessTokenClaims, error) {
	if secret == "" {
		return nil, errors.New("secret is required for token verification")
	}

	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
