// Package models - CmdbObject, a typed instance stored in the EAV
// layout (cmdb_objects).
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectField is one name/value pair of the flat field list. The value
// is typed only by the owning CmdbType's field definition.
type ObjectField struct {
	Name  string      `json:"name" bson:"name"`
	Value interface{} `json:"value" bson:"value"`
}

// MultiDataEntry is one row of a multi-data section.
type MultiDataEntry struct {
	MultiDataID int64         `json:"multi_data_id" bson:"multi_data_id"`
	Data        []ObjectField `json:"data,omitempty" bson:"data,omitempty"`
}

// MultiDataSection is a repeating group layered on top of the flat
// field list. HighestID is the per-section row counter: row ids only
// grow, deleted rows leave gaps.
type MultiDataSection struct {
	SectionID string           `json:"section_id" bson:"section_id"`
	HighestID int64            `json:"highest_id" bson:"highest_id"`
	Values    []MultiDataEntry `json:"values,omitempty" bson:"values,omitempty"`
}

// CmdbObject is a typed instance (cmdb_objects). TypeID is a soft
// foreign key onto CmdbType.public_id, validated at write time only;
// objects whose type was deleted drop out of listings through the
// pipeline's type join.
type CmdbObject struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	TypeID  int64  `json:"type_id" bson:"type_id" index:"single:1,compound:cmdb_object_type_active"`
	Status  bool   `json:"status,omitempty" bson:"status,omitempty"`
	Active  bool   `json:"active" bson:"active" index:"compound:cmdb_object_type_active"`
	Version string `json:"version,omitempty" bson:"version,omitempty"`

	AuthorID     int64      `json:"author_id,omitempty" bson:"author_id,omitempty"`
	EditorID     int64      `json:"editor_id,omitempty" bson:"editor_id,omitempty"`
	CreationTime time.Time  `json:"creation_time,omitempty" bson:"creation_time,omitempty"`
	LastEditTime *time.Time `json:"last_edit_time,omitempty" bson:"last_edit_time,omitempty"`

	Fields            []ObjectField      `json:"fields,omitempty" bson:"fields,omitempty"`
	MultiDataSections []MultiDataSection `json:"multi_data_sections,omitempty" bson:"multi_data_sections,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// GetValue returns the stored value of the named field. Absent fields
// return (nil, false).
func (o *CmdbObject) GetValue(name string) (interface{}, bool) {
	for _, field := range o.Fields {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// GetMultiDataSection returns the section with the given id.
func (o *CmdbObject) GetMultiDataSection(sectionID string) (MultiDataSection, bool) {
	for _, section := range o.MultiDataSections {
		if section.SectionID == sectionID {
			return section, true
		}
	}
	return MultiDataSection{}, false
}
