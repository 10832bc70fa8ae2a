// Package render turns a CmdbObject plus its CmdbType into a
// RenderResult: a denormalized, reference-resolved projection built per
// request and never persisted.
package render

import (
	"time"

	models "meta_cmdb/internal/api/cmdb/models"
)

// ObjectInformation is the identity block of a render result.
type ObjectInformation struct {
	ObjectID     int64      `json:"object_id"`
	Active       bool       `json:"active"`
	Version      string     `json:"version,omitempty"`
	AuthorID     int64      `json:"author_id,omitempty"`
	EditorID     int64      `json:"editor_id,omitempty"`
	CreationTime time.Time  `json:"creation_time,omitempty"`
	LastEditTime *time.Time `json:"last_edit_time,omitempty"`
}

// TypeInformation is the schema block of a render result.
type TypeInformation struct {
	TypeID   int64  `json:"type_id"`
	TypeName string `json:"type_name"`
	Label    string `json:"type_label,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Active   bool   `json:"active"`
}

// RenderedField is one resolved field. For reference fields Value holds
// the nested RenderResult (or the raw id once the depth budget is
// spent); Reference carries the target's public id either way.
type RenderedField struct {
	Name      string      `json:"name"`
	Label     string      `json:"label,omitempty"`
	Type      string      `json:"type,omitempty"`
	Value     interface{} `json:"value"`
	Reference int64       `json:"reference,omitempty"`
}

// RenderedExternal is one external link with placeholders substituted.
type RenderedExternal struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Icon  string `json:"icon,omitempty"`
	Href  string `json:"href"`
}

// RenderResult is the full denormalized projection of one object.
type RenderResult struct {
	ObjectInformation ObjectInformation         `json:"object_information"`
	TypeInformation   TypeInformation           `json:"type_information"`
	Fields            []RenderedField           `json:"fields"`
	Sections          []models.TypeSection      `json:"sections,omitempty"`
	Summaries         []RenderedField           `json:"summaries,omitempty"`
	SummaryLine       string                    `json:"summary_line,omitempty"`
	Externals         []RenderedExternal        `json:"externals,omitempty"`
	MultiDataSections []models.MultiDataSection `json:"multi_data_sections,omitempty"`
}
