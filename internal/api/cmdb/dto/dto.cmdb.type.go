// Package dto - request payloads for the cmdb domain (types).
package dto

import (
	models "meta_cmdb/internal/api/cmdb/models"
)

// TypeCreateInput creates a new type schema. The public id is allocated
// server-side; author and timestamps are stamped by the manager.
type TypeCreateInput struct {
	Name               string                    `json:"name" validate:"required,no_xss"`
	Label              string                    `json:"label,omitempty" validate:"omitempty,no_xss"`
	Description        string                    `json:"description,omitempty"`
	Active             *bool                     `json:"active,omitempty"`
	SelectableAsParent bool                      `json:"selectable_as_parent,omitempty"`
	GlobalTemplateIds  []string                  `json:"global_template_ids,omitempty"`
	Fields             []models.TypeField        `json:"fields,omitempty" validate:"dive"`
	RenderMeta         models.TypeRenderMeta     `json:"render_meta,omitempty"`
	ACL                *models.AccessControlList `json:"acl,omitempty"`
}

// TypeUpdateInput carries a partial type update. Absent fields keep
// their stored values.
type TypeUpdateInput struct {
	Name               string                    `json:"name,omitempty" validate:"omitempty,no_xss"`
	Label              string                    `json:"label,omitempty" validate:"omitempty,no_xss"`
	Description        string                    `json:"description,omitempty"`
	Active             *bool                     `json:"active,omitempty"`
	SelectableAsParent *bool                     `json:"selectable_as_parent,omitempty"`
	GlobalTemplateIds  []string                  `json:"global_template_ids,omitempty"`
	Fields             []models.TypeField        `json:"fields,omitempty" validate:"dive"`
	RenderMeta         *models.TypeRenderMeta    `json:"render_meta,omitempty"`
	ACL                *models.AccessControlList `json:"acl,omitempty"`
}
