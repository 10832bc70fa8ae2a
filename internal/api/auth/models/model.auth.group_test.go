package models

import "testing"

func TestGroupHasPermission(t *testing.T) {
	group := Group{Permissions: []string{
		PermissionUserView,
		"base.framework.object.view",
	}}

	t.Run("exact match", func(t *testing.T) {
		if !group.HasPermission(PermissionUserView) {
			t.Fatal("expected exact permission to match")
		}
	})

	t.Run("missing permission", func(t *testing.T) {
		if group.HasPermission(PermissionUserDelete) {
			t.Fatal("expected missing permission to be denied")
		}
	})

	t.Run("wildcard grants everything", func(t *testing.T) {
		admin := Group{Permissions: []string{PermissionWildcard}}
		if !admin.HasPermission("base.framework.type.delete") {
			t.Fatal("expected wildcard group to pass any check")
		}
	})

	t.Run("empty group denies", func(t *testing.T) {
		var empty Group
		if empty.HasPermission(PermissionUserView) {
			t.Fatal("expected empty group to be denied")
		}
	})
}
