// Package dto - request payloads for the cmdb domain (categories,
// section templates).
package dto

import (
	models "meta_cmdb/internal/api/cmdb/models"
)

// CategoryCreateInput creates a category tree node.
type CategoryCreateInput struct {
	Name     string              `json:"name" validate:"required,no_xss"`
	Label    string              `json:"label,omitempty" validate:"omitempty,no_xss"`
	Meta     models.CategoryMeta `json:"meta,omitempty"`
	ParentID int64               `json:"parent,omitempty" validate:"omitempty,gte=0"`
	Types    []int64             `json:"types,omitempty"`
}

// CategoryUpdateInput carries a partial category update.
type CategoryUpdateInput struct {
	Name     string               `json:"name,omitempty" validate:"omitempty,no_xss"`
	Label    string               `json:"label,omitempty" validate:"omitempty,no_xss"`
	Meta     *models.CategoryMeta `json:"meta,omitempty"`
	ParentID *int64               `json:"parent,omitempty" validate:"omitempty,gte=0"`
	Types    []int64              `json:"types,omitempty"`
}

// SectionTemplateCreateInput creates a reusable section blueprint.
type SectionTemplateCreateInput struct {
	Name     string             `json:"name" validate:"required,no_xss"`
	Label    string             `json:"label,omitempty" validate:"omitempty,no_xss"`
	IsGlobal bool               `json:"is_global,omitempty"`
	Fields   []models.TypeField `json:"fields,omitempty" validate:"dive"`
}

// SectionTemplateUpdateInput carries a partial template update.
// Predefined templates reject updates at the manager layer.
type SectionTemplateUpdateInput struct {
	Name     string             `json:"name,omitempty" validate:"omitempty,no_xss"`
	Label    string             `json:"label,omitempty" validate:"omitempty,no_xss"`
	IsGlobal *bool              `json:"is_global,omitempty"`
	Fields   []models.TypeField `json:"fields,omitempty" validate:"dive"`
}
