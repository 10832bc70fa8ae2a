// Package models - CmdbType, the schema definition every CmdbObject
// instance is validated and rendered against (cmdb_types).
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeField is one field definition of a type schema. Value semantics
// depend on Type: ref fields point at another object's public_id,
// ref-section-field values are pre-resolved elsewhere, date fields are
// rendered and reported as "2006-01-02".
type TypeField struct {
	Name     string        `json:"name" bson:"name"`
	Label    string        `json:"label,omitempty" bson:"label,omitempty"`
	Type     string        `json:"type" bson:"type"`
	Required bool          `json:"required,omitempty" bson:"required,omitempty"`
	RefTypes []int64       `json:"ref_types,omitempty" bson:"ref_types,omitempty"` // allowed target types for ref fields
	Options  []interface{} `json:"options,omitempty" bson:"options,omitempty"`     // select/radio choices
	Default  interface{}   `json:"default,omitempty" bson:"default,omitempty"`
}

// TypeSection groups fields for display. Type "multi-data-section"
// marks the section's fields as repeating-group members stored under
// multi_data_sections instead of the flat field list.
type TypeSection struct {
	Type      string        `json:"type" bson:"type"`
	Name      string        `json:"name" bson:"name"`
	Label     string        `json:"label,omitempty" bson:"label,omitempty"`
	Fields    []interface{} `json:"fields,omitempty" bson:"fields,omitempty"` // field names, or nested refs for ref-sections
	Reference interface{}   `json:"reference,omitempty" bson:"reference,omitempty"`
}

// TypeExternal is an external link template rendered per object.
type TypeExternal struct {
	Name   string   `json:"name" bson:"name"`
	Href   string   `json:"href" bson:"href"`
	Label  string   `json:"label,omitempty" bson:"label,omitempty"`
	Icon   string   `json:"icon,omitempty" bson:"icon,omitempty"`
	Fields []string `json:"fields,omitempty" bson:"fields,omitempty"` // field names substituted into href
}

// TypeSummary names the fields whose values form the one-line summary.
type TypeSummary struct {
	Fields []string `json:"fields,omitempty" bson:"fields,omitempty"`
}

// TypeRenderMeta carries everything the render engine needs besides the
// field list itself.
type TypeRenderMeta struct {
	Icon      string         `json:"icon,omitempty" bson:"icon,omitempty"`
	Sections  []TypeSection  `json:"sections,omitempty" bson:"sections,omitempty"`
	Externals []TypeExternal `json:"externals,omitempty" bson:"externals,omitempty"`
	Summary   TypeSummary    `json:"summary,omitempty" bson:"summary,omitempty"`
}

// GroupPermissions maps a group's public id (as a string key, matching
// the pipeline path acl.groups.includes.<gid>) to its permission list.
type GroupPermissions struct {
	Includes map[string][]string `json:"includes,omitempty" bson:"includes,omitempty"`
}

// AccessControlList gates object visibility and mutation per type. A
// deactivated or absent ACL grants access to everyone; an activated one
// grants only the listed groups their listed permissions.
type AccessControlList struct {
	Activated bool             `json:"activated" bson:"activated"`
	Groups    GroupPermissions `json:"groups,omitempty" bson:"groups,omitempty"`
}

// CmdbType is the schema document (cmdb_types). Active=false freezes
// every object of the type: insert, update and delete are rejected at
// the manager layer while the flag is down.
type CmdbType struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	Name        string `json:"name" bson:"name" index:"unique"`
	Label       string `json:"label,omitempty" bson:"label,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Active      bool   `json:"active" bson:"active" index:"single:1"`
	Version     string `json:"version,omitempty" bson:"version,omitempty"`

	AuthorID     int64      `json:"author_id,omitempty" bson:"author_id,omitempty"`
	EditorID     int64      `json:"editor_id,omitempty" bson:"editor_id,omitempty"`
	CreationTime time.Time  `json:"creation_time,omitempty" bson:"creation_time,omitempty"`
	LastEditTime *time.Time `json:"last_edit_time,omitempty" bson:"last_edit_time,omitempty"`

	SelectableAsParent bool     `json:"selectable_as_parent" bson:"selectable_as_parent"`
	GlobalTemplateIds  []string `json:"global_template_ids,omitempty" bson:"global_template_ids,omitempty"`

	Fields     []TypeField        `json:"fields,omitempty" bson:"fields,omitempty"`
	RenderMeta TypeRenderMeta     `json:"render_meta,omitempty" bson:"render_meta,omitempty"`
	ACL        *AccessControlList `json:"acl,omitempty" bson:"acl,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// GetField returns the field definition with the given name.
func (t *CmdbType) GetField(name string) (TypeField, bool) {
	for _, field := range t.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return TypeField{}, false
}

// MultiDataSectionNames returns the names of all multi-data sections.
func (t *CmdbType) MultiDataSectionNames() []string {
	names := []string{}
	for _, section := range t.RenderMeta.Sections {
		if section.Type == SectionTypeMultiData {
			names = append(names, section.Name)
		}
	}
	return names
}

// MultiDataFieldNames returns the names of fields living inside
// multi-data sections. Their values are stored under
// multi_data_sections, not the flat field list.
func (t *CmdbType) MultiDataFieldNames() map[string]bool {
	fields := map[string]bool{}
	for _, section := range t.RenderMeta.Sections {
		if section.Type != SectionTypeMultiData {
			continue
		}
		for _, f := range section.Fields {
			if name, ok := f.(string); ok {
				fields[name] = true
			}
		}
	}
	return fields
}
