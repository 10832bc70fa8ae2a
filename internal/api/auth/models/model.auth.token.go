// Package models - token models of the auth domain.
package models

import "github.com/dgrijalva/jwt-go"

// JwtClaims is the payload encoded into login tokens.
type JwtClaims struct {
	UserID  int64 `json:"userId"`
	GroupID int64 `json:"groupId"`
	jwt.StandardClaims
}

// Token is one device session (one token per hwid).
type Token struct {
	Hwid     string `json:"hwid" bson:"hwid,omitempty"`
	JwtToken string `json:"jwtToken,omitempty" bson:"jwtToken,omitempty"`
}
