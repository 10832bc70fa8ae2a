// Package models - CmdbSectionTemplate, a reusable section definition
// (cmdb_section_templates). Global templates are copied into a type at
// save time; there is no live link afterwards.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CmdbSectionTemplate is a shared section blueprint.
type CmdbSectionTemplate struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	Name       string      `json:"name" bson:"name" index:"unique"`
	Label      string      `json:"label,omitempty" bson:"label,omitempty"`
	IsGlobal   bool        `json:"is_global" bson:"is_global"`
	Predefined bool        `json:"predefined" bson:"predefined"`
	Fields     []TypeField `json:"fields,omitempty" bson:"fields,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// ToSection converts the template into a TypeSection for embedding
// into a type's render meta.
func (t *CmdbSectionTemplate) ToSection() TypeSection {
	fields := make([]interface{}, 0, len(t.Fields))
	for _, field := range t.Fields {
		fields = append(fields, field.Name)
	}
	return TypeSection{
		Type:   SectionTypeSection,
		Name:   t.Name,
		Label:  t.Label,
		Fields: fields,
	}
}
