package cmdbsvc

import (
	"strconv"
	"strings"

	models "meta_cmdb/internal/api/cmdb/models"
)

// bumpVersion increments the patch component of a "major.minor.patch"
// version string. Anything unparseable restarts at the default.
func bumpVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return models.DefaultVersion
	}

	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.DefaultVersion
	}
	return parts[0] + "." + parts[1] + "." + strconv.Itoa(patch+1)
}
