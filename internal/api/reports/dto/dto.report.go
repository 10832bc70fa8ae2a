// Package dto - request DTOs of the reports domain.
package dto

import (
	models "meta_cmdb/internal/api/reports/models"
)

// ReportCreateInput creates a saved report.
type ReportCreateInput struct {
	Name           string           `json:"name" validate:"required,no_xss"`
	TypeID         int64            `json:"type_id" validate:"required,gt=0"`
	SelectedFields []string         `json:"selected_fields,omitempty"`
	Conditions     *models.RuleNode `json:"conditions,omitempty"`
}

// ReportUpdateInput carries a partial report update. The bound type of
// a report never changes; recreate the report for another type.
type ReportUpdateInput struct {
	Name           string           `json:"name,omitempty" validate:"omitempty,no_xss"`
	SelectedFields []string         `json:"selected_fields,omitempty"`
	Conditions     *models.RuleNode `json:"conditions,omitempty"`
}
