package cmdbhdl

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	models "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
)

// LogsHandler serves the object change history.
type LogsHandler struct {
	*basehdl.BaseHandler[models.CmdbObjectLog, models.CmdbObjectLog, models.CmdbObjectLog]
	Logs *cmdbsvc.LogsManager
}

// NewLogsHandler creates a LogsHandler. Log entries are written by the
// managers only, so no create/update DTOs exist for this collection.
func NewLogsHandler() (*LogsHandler, error) {
	manager, err := cmdbsvc.NewLogsManager()
	if err != nil {
		return nil, fmt.Errorf("create LogsManager: %w", err)
	}
	return &LogsHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbObjectLog, models.CmdbObjectLog, models.CmdbObjectLog](manager.BaseServiceMongoImpl),
		Logs:        manager,
	}, nil
}

// HandleForObject handles GET /objects/:id/logs, newest first. Query:
// limit (default 50).
func (h *LogsHandler) HandleForObject(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
		entries, err := h.Logs.ForObject(c.Context(), publicID, limit)
		h.HandleResponse(c, entries, err)
		return nil
	})
}
