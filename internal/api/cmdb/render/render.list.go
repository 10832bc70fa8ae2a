package render

import (
	"context"

	"github.com/sirupsen/logrus"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/logger"
)

// RenderList renders a batch of objects sequentially, each against a
// fresh visited set. Objects whose type cannot be loaded are dropped
// from the result and logged; the batch itself never fails.
func (r *CmdbRender) RenderList(ctx context.Context, objects []models.CmdbObject) []RenderResult {
	results := make([]RenderResult, 0, len(objects))
	for i := range objects {
		result, err := r.Render(ctx, &objects[i])
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"object_id": objects[i].PublicID,
				"type_id":   objects[i].TypeID,
			}).WithError(err).Warn("Object skipped during batch render")
			continue
		}
		results = append(results, *result)
	}
	return results
}
