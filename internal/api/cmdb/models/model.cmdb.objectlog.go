// Package models - CmdbObjectLog, the audit trail written for every
// object mutation (cmdb_object_logs). Entries are produced by the
// data-change event subscriber, never by handlers directly.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CmdbObjectLog is one audit entry. RenderState carries a snapshot of
// the object's rendered fields at log time, so the trail survives later
// schema changes.
type CmdbObjectLog struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	ObjectID int64     `json:"object_id" bson:"object_id" index:"single:1,compound:cmdb_object_log_object_time"`
	TypeID   int64     `json:"type_id,omitempty" bson:"type_id,omitempty"`
	Action   string    `json:"action" bson:"action"`
	Comment  string    `json:"comment,omitempty" bson:"comment,omitempty"`
	AuthorID int64     `json:"author_id,omitempty" bson:"author_id,omitempty"`
	LogTime  time.Time `json:"log_time" bson:"log_time" index:"compound:cmdb_object_log_object_time,order:-1"`
	Version  string    `json:"version,omitempty" bson:"version,omitempty"`

	RenderState interface{} `json:"render_state,omitempty" bson:"render_state,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
