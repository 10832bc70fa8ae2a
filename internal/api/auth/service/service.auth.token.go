// Package authsvc - users, groups and login tokens.
package authsvc

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"

	models "meta_cmdb/internal/api/auth/models"
	"meta_cmdb/internal/common"
)

// TokenLifetime is how long a login token stays valid.
const TokenLifetime = 7 * 24 * time.Hour

// CreateToken signs a login token for the user.
func CreateToken(secret string, userID, groupID int64) (string, error) {
	now := time.Now()
	claims := models.JwtClaims{
		UserID:  userID,
		GroupID: groupID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenLifetime).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token signing failed: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*models.JwtClaims, error) {
	claims := &models.JwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if validationErr, ok := err.(*jwt.ValidationError); ok && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}
	return claims, nil
}
