package models

// Field types a CmdbType schema may declare. The object store keeps
// every value untyped; these drive coercion, rendering and reporting.
const (
	FieldTypeText            = "text"
	FieldTypeTextarea        = "textarea"
	FieldTypePassword        = "password"
	FieldTypeNumber          = "number"
	FieldTypeCheckbox        = "checkbox"
	FieldTypeRadio           = "radio"
	FieldTypeSelect          = "select"
	FieldTypeDate            = "date"
	FieldTypeRef             = "ref"
	FieldTypeRefSectionField = "ref-section-field"
	FieldTypeLocation        = "location"
)

// Section types inside render_meta.sections.
const (
	SectionTypeSection   = "section"
	SectionTypeMultiData = "multi-data-section"
	SectionTypeRef       = "ref-section"
)

// Permission names checked by the ACL stages and the auth middleware.
const (
	PermissionObjectView       = "base.framework.object.view"
	PermissionObjectAdd        = "base.framework.object.add"
	PermissionObjectEdit       = "base.framework.object.edit"
	PermissionObjectDelete     = "base.framework.object.delete"
	PermissionObjectActivation = "base.framework.object.activation"

	PermissionTypeView   = "base.framework.type.view"
	PermissionTypeAdd    = "base.framework.type.add"
	PermissionTypeEdit   = "base.framework.type.edit"
	PermissionTypeDelete = "base.framework.type.delete"

	PermissionCategoryView   = "base.framework.category.view"
	PermissionCategoryAdd    = "base.framework.category.add"
	PermissionCategoryEdit   = "base.framework.category.edit"
	PermissionCategoryDelete = "base.framework.category.delete"

	PermissionSectionTemplateView   = "base.framework.sectionTemplate.view"
	PermissionSectionTemplateAdd    = "base.framework.sectionTemplate.add"
	PermissionSectionTemplateEdit   = "base.framework.sectionTemplate.edit"
	PermissionSectionTemplateDelete = "base.framework.sectionTemplate.delete"

	PermissionLogView = "base.framework.log.view"
)

// Object log actions.
const (
	LogActionCreate = "CREATE"
	LogActionEdit   = "EDIT"
	LogActionActive = "ACTIVE_CHANGE"
	LogActionDelete = "DELETE"
)

// DefaultVersion is the version a freshly created type or object starts
// with.
const DefaultVersion = "1.0.0"
