package models

// Permission names of the user management domain. A group holding
// PermissionWildcard passes every permission check.
const (
	PermissionWildcard = "*"

	PermissionUserView   = "base.user-management.user.view"
	PermissionUserAdd    = "base.user-management.user.add"
	PermissionUserEdit   = "base.user-management.user.edit"
	PermissionUserDelete = "base.user-management.user.delete"

	PermissionGroupView   = "base.user-management.group.view"
	PermissionGroupAdd    = "base.user-management.group.add"
	PermissionGroupEdit   = "base.user-management.group.edit"
	PermissionGroupDelete = "base.user-management.group.delete"
)

// Names of the seeded system groups.
const (
	GroupNameAdmin = "admin"
	GroupNameUser  = "user"
)
