// Package dto - request payloads for the cmdb domain (objects).
package dto

import (
	models "meta_cmdb/internal/api/cmdb/models"
)

// ObjectCreateInput creates a new object of an existing, active type.
type ObjectCreateInput struct {
	TypeID            int64                     `json:"type_id" validate:"required,gt=0"`
	Active            *bool                     `json:"active,omitempty"`
	Fields            []models.ObjectField      `json:"fields,omitempty" validate:"dive"`
	MultiDataSections []models.MultiDataSection `json:"multi_data_sections,omitempty"`
}

// ObjectUpdateInput carries a partial object update. The type id of an
// object never changes after creation.
type ObjectUpdateInput struct {
	Active            *bool                     `json:"active,omitempty"`
	Fields            []models.ObjectField      `json:"fields,omitempty" validate:"dive"`
	MultiDataSections []models.MultiDataSection `json:"multi_data_sections,omitempty"`
	Comment           string                    `json:"comment,omitempty"`
}

// ObjectStateInput toggles the active flag.
type ObjectStateInput struct {
	Active bool `json:"active"`
}
