// Package models - user and group models of the auth domain.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a local account. Passwords are stored as bcrypt hashes,
// never in plain text. Token holds the most recent login token, Tokens
// keeps one token per device (hwid) so parallel sessions stay valid.
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID  int64              `json:"public_id" bson:"public_id" index:"unique"`
	UserName  string             `json:"user_name" bson:"user_name" index:"unique"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty" index:"unique,sparse"`
	FirstName string             `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName  string             `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Password  string             `json:"-" bson:"password,omitempty"`
	GroupID   int64              `json:"group_id" bson:"group_id" index:"single:1"`
	Token     string             `json:"-" bson:"token"`
	Tokens    []Token            `json:"-" bson:"tokens"`
	Active    bool               `json:"active" bson:"active"`
	CreatedAt int64              `json:"created_at" bson:"created_at"`
	UpdatedAt int64              `json:"updated_at" bson:"updated_at"`
}

// UserPaginateResult is one page of users.
type UserPaginateResult struct {
	Page      int64  `json:"page" bson:"page"`
	Limit     int64  `json:"limit" bson:"limit"`
	ItemCount int64  `json:"itemCount" bson:"itemCount"`
	Items     []User `json:"items" bson:"items"`
}
