// Package models - CmdbCategory groups types into a navigation tree
// (cmdb_categories).
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryMeta holds display hints.
type CategoryMeta struct {
	Icon  string `json:"icon,omitempty" bson:"icon,omitempty"`
	Order int64  `json:"order,omitempty" bson:"order,omitempty"`
}

// CmdbCategory is one node of the category tree. ParentID zero means
// root. Types lists the public ids of the member CmdbTypes.
type CmdbCategory struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	Name     string       `json:"name" bson:"name" index:"unique"`
	Label    string       `json:"label,omitempty" bson:"label,omitempty"`
	Meta     CategoryMeta `json:"meta,omitempty" bson:"meta,omitempty"`
	ParentID int64        `json:"parent,omitempty" bson:"parent,omitempty" index:"single:1"`
	Types    []int64      `json:"types,omitempty" bson:"types,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
