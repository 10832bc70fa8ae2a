// Package models - saved report definitions (cmdb_reports). A report
// binds a rule tree to one CmdbType; running it compiles the tree into
// a match expression scoped to that type.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rule conditions and operators accepted by the compiler.
const (
	ConditionAnd = "and"
	ConditionOr  = "or"

	OperatorEqual        = "="
	OperatorNotEqual     = "!="
	OperatorLessEqual    = "<="
	OperatorGreaterEqual = ">="
	OperatorLess         = "<"
	OperatorGreater      = ">"
	OperatorIn           = "in"
	OperatorNotIn        = "not in"
	OperatorContains     = "contains"
	OperatorLike         = "like"
	OperatorIsNull       = "is null"
	OperatorIsNotNull    = "is not null"
)

// Report permissions checked by the auth middleware.
const (
	PermissionReportView   = "base.framework.report.view"
	PermissionReportAdd    = "base.framework.report.add"
	PermissionReportEdit   = "base.framework.report.edit"
	PermissionReportDelete = "base.framework.report.delete"
	PermissionReportRun    = "base.framework.report.run"
)

// RuleNode is one node of the rule tree. A node with a Condition is a
// group whose Rules are combined with and/or; otherwise it is a leaf
// {field, operator, value}.
type RuleNode struct {
	Condition string     `json:"condition,omitempty" bson:"condition,omitempty"`
	Rules     []RuleNode `json:"rules,omitempty" bson:"rules,omitempty"`

	Field    string      `json:"field,omitempty" bson:"field,omitempty"`
	Operator string      `json:"operator,omitempty" bson:"operator,omitempty"`
	Value    interface{} `json:"value,omitempty" bson:"value,omitempty"`
}

// IsGroup reports whether the node is a rule group.
func (n *RuleNode) IsGroup() bool {
	return n.Condition != ""
}

// CmdbReport is a saved report definition.
type CmdbReport struct {
	ID       primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PublicID int64              `json:"public_id" bson:"public_id" index:"unique"`

	Name           string    `json:"name" bson:"name" index:"unique"`
	TypeID         int64     `json:"type_id" bson:"type_id" index:"single:1"`
	SelectedFields []string  `json:"selected_fields,omitempty" bson:"selected_fields,omitempty"`
	Conditions     *RuleNode `json:"conditions,omitempty" bson:"conditions,omitempty"`
	Predefined     bool      `json:"predefined,omitempty" bson:"predefined,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64 `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
