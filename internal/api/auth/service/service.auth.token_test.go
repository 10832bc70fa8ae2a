package authsvc

import (
	"errors"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	models "meta_cmdb/internal/api/auth/models"
	"meta_cmdb/internal/common"
)

func TestCreateTokenRoundTrip(t *testing.T) {
	token, err := CreateToken("secret", 7, 2)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Fatalf("UserID = %d, want 7", claims.UserID)
	}
	if claims.GroupID != 2 {
		t.Fatalf("GroupID = %d, want 2", claims.GroupID)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := CreateToken("secret", 7, 2)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	if _, err := ParseToken("other", token); !errors.Is(err, common.ErrTokenInvalid) {
		t.Fatalf("wrong secret error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := models.JwtClaims{
		UserID:  7,
		GroupID: 2,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseToken("secret", signed); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expired token error = %v, want ErrTokenExpired", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.token"); !errors.Is(err, common.ErrTokenInvalid) {
		t.Fatalf("garbage token error = %v, want ErrTokenInvalid", err)
	}
}
