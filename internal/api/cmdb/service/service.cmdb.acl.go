// Package cmdbsvc - managers for the cmdb domain: types, objects,
// categories, section templates and object logs.
package cmdbsvc

import (
	"strconv"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/common"
)

// checkMutable gates a mutation on an already-loaded type: the type
// must be active, and its ACL must grant the permission.
func checkMutable(t *models.CmdbType, groupID int64, permission string) error {
	if !t.Active {
		return common.ErrTypeInactive
	}
	return VerifyAccess(t, groupID, permission)
}

// VerifyAccess checks a type's ACL for a single-document operation. It
// mirrors the pipeline grant of mongoquery.AccessControlStages: an
// absent or deactivated ACL grants access, an activated one requires
// the group to carry the permission. Malformed input fails closed.
func VerifyAccess(t *models.CmdbType, groupID int64, permission string) error {
	if groupID <= 0 || permission == "" {
		return common.ErrAccessDenied
	}

	if t.ACL == nil || !t.ACL.Activated {
		return nil
	}

	granted := t.ACL.Groups.Includes[strconv.FormatInt(groupID, 10)]
	for _, p := range granted {
		if p == permission {
			return nil
		}
	}
	return common.ErrAccessDenied
}
