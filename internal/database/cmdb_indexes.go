// Package database - additional indexes for nested fields and compounds
// that cannot be expressed through model index tags.
package database

import (
	"context"
	"strings"

	"meta_cmdb/internal/global"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCmdbAdditionalIndexes creates the nested-field indexes used by
// the object query pipelines. Call after CreateIndexes for the CMDB
// collections.
func CreateCmdbAdditionalIndexes(ctx context.Context, db *mongo.Database) error {
	// objects: (type_id, fields.name) multikey — field-condition matches
	// from compiled report rules always carry a type_id gate.
	objects := db.Collection(global.MongoDB_ColNames.CmdbObjects)
	if _, err := objects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "type_id", Value: 1},
			{Key: "fields.name", Value: 1},
		},
		Options: options.Index().SetName("cmdb_object_type_field"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// objects: (type_id, active) — listing pipelines filter both.
	if _, err := objects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "type_id", Value: 1},
			{Key: "active", Value: 1},
		},
		Options: options.Index().SetName("cmdb_object_type_active"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// objects: multi_data_sections.section_id — mds rule routing.
	if _, err := objects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "multi_data_sections.section_id", Value: 1},
		},
		Options: options.Index().SetName("cmdb_object_mds_section").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// types: render_meta.sections.fields multikey — reference lookups
	// resolve which type sections point at a given field.
	types := db.Collection(global.MongoDB_ColNames.CmdbTypes)
	if _, err := types.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "render_meta.sections.fields", Value: 1},
		},
		Options: options.Index().SetName("cmdb_type_section_fields").SetSparse(true),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	// object logs: (object_id, log_time desc) — per-object history reads.
	logs := db.Collection(global.MongoDB_ColNames.CmdbObjectLogs)
	if _, err := logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "object_id", Value: 1},
			{Key: "log_time", Value: -1},
		},
		Options: options.Index().SetName("cmdb_object_log_object_time"),
	}); err != nil && !isIndexExistsError(err) {
		return err
	}

	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}
