// Package models - Group of the auth domain.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a user group. Its public id is what type ACLs grant access
// to, and Permissions lists the permission names its members hold.
type Group struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID    int64              `json:"public_id" bson:"public_id" index:"unique"`
	Name        string             `json:"name" bson:"name" index:"unique"`
	Label       string             `json:"label,omitempty" bson:"label,omitempty"`
	Permissions []string           `json:"permissions" bson:"permissions"`
	System      bool               `json:"system" bson:"system"` // seeded groups cannot be deleted
	CreatedAt   int64              `json:"created_at" bson:"created_at"`
	UpdatedAt   int64              `json:"updated_at" bson:"updated_at"`
}

// HasPermission reports whether the group holds the permission, either
// exactly or through a wildcard entry ("*" grants everything).
func (g *Group) HasPermission(name string) bool {
	for _, p := range g.Permissions {
		if p == name || p == PermissionWildcard {
			return true
		}
	}
	return false
}
