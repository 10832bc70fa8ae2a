package cmdbsvc

import (
	"errors"
	"testing"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
)

func aclType(active bool, acl *models.AccessControlList) *models.CmdbType {
	return &models.CmdbType{
		PublicID: 10,
		Name:     "server",
		Active:   active,
		ACL:      acl,
	}
}

func TestVerifyAccess(t *testing.T) {
	granting := &models.AccessControlList{
		Activated: true,
		Groups: models.GroupPermissions{
			Includes: map[string][]string{
				"3": {models.PermissionObjectView, models.PermissionObjectEdit},
			},
		},
	}

	cases := []struct {
		name       string
		t          *models.CmdbType
		groupID    int64
		permission string
		wantErr    error
	}{
		{"listed group with the permission", aclType(true, granting), 3, models.PermissionObjectEdit, nil},
		{"listed group without the permission", aclType(true, granting), 3, models.PermissionObjectDelete, common.ErrAccessDenied},
		{"unlisted group", aclType(true, granting), 4, models.PermissionObjectView, common.ErrAccessDenied},
		{"absent acl grants everyone", aclType(true, nil), 4, models.PermissionObjectEdit, nil},
		{"deactivated acl grants everyone", aclType(true, &models.AccessControlList{Activated: false, Groups: granting.Groups}), 4, models.PermissionObjectEdit, nil},
		{"zero group fails closed", aclType(true, nil), 0, models.PermissionObjectView, common.ErrAccessDenied},
		{"negative group fails closed", aclType(true, granting), -4, models.PermissionObjectView, common.ErrAccessDenied},
		{"empty permission fails closed", aclType(true, nil), 3, "", common.ErrAccessDenied},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifyAccess(tc.t, tc.groupID, tc.permission)
			if !errors.Is(err, tc.wantErr) && err != tc.wantErr {
				t.Fatalf("VerifyAccess = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCheckMutableRejectsInactiveType(t *testing.T) {
	inactive := aclType(false, nil)
	if err := checkMutable(inactive, 3, models.PermissionObjectEdit); !errors.Is(err, common.ErrTypeInactive) {
		t.Fatalf("checkMutable on an inactive type = %v, want ErrTypeInactive", err)
	}

	// The inactive check comes before the ACL, so even a granted group
	// is frozen out.
	granting := &models.AccessControlList{
		Activated: true,
		Groups:    models.GroupPermissions{Includes: map[string][]string{"3": {models.PermissionObjectEdit}}},
	}
	frozen := aclType(false, granting)
	if err := checkMutable(frozen, 3, models.PermissionObjectEdit); !errors.Is(err, common.ErrTypeInactive) {
		t.Fatalf("checkMutable on a frozen granted type = %v, want ErrTypeInactive", err)
	}
}

func TestCheckMutableDelegatesToACL(t *testing.T) {
	granting := &models.AccessControlList{
		Activated: true,
		Groups:    models.GroupPermissions{Includes: map[string][]string{"3": {models.PermissionObjectEdit}}},
	}
	active := aclType(true, granting)

	if err := checkMutable(active, 3, models.PermissionObjectEdit); err != nil {
		t.Fatalf("checkMutable with a granted group = %v, want nil", err)
	}
	if err := checkMutable(active, 4, models.PermissionObjectEdit); !errors.Is(err, common.ErrAccessDenied) {
		t.Fatalf("checkMutable with an unlisted group = %v, want ErrAccessDenied", err)
	}
}
