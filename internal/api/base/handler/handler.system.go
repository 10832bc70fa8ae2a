package basehdl

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"meta_cmdb/internal/api/events"
	"meta_cmdb/internal/common"
	"meta_cmdb/internal/global"
)

// SystemHandler serves the health and status endpoints.
type SystemHandler struct{}

// NewSystemHandler creates a SystemHandler.
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// HandleHealth reports API and database health. Degraded database
// connectivity answers 503 with the same envelope.
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthData := fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": fiber.Map{
			"api": "ok",
		},
	}

	if global.MongoDB_Session != nil {
		if err := global.MongoDB_Session.Ping(ctx, nil); err != nil {
			healthData["status"] = "degraded"
			healthData["services"].(fiber.Map)["database"] = "error"
			healthData["database_error"] = err.Error()
			return JSONResponse(c, common.StatusServiceUnavailable, fiber.Map{
				"code":    common.StatusServiceUnavailable,
				"message": "system degraded",
				"data":    healthData,
				"status":  "error",
			})
		}
		healthData["services"].(fiber.Map)["database"] = "ok"
	} else {
		healthData["status"] = "degraded"
		healthData["services"].(fiber.Map)["database"] = "not_initialized"
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    healthData,
		"status":  "success",
	})
}

// HandleStatus exposes runtime counters: change events dropped by slow
// subscribers and the configured database name.
func (h *SystemHandler) HandleStatus(c fiber.Ctx) error {
	statusData := fiber.Map{
		"timestamp":      time.Now().Format(time.RFC3339),
		"dropped_events": events.DroppedEvents(),
	}
	if global.MongoDB_ServerConfig != nil {
		statusData["database"] = global.MongoDB_ServerConfig.MongoDB_DBName
	}

	return JSONResponse(c, common.StatusOK, fiber.Map{
		"code":    common.StatusOK,
		"message": common.MsgSuccess,
		"data":    statusData,
		"status":  "success",
	})
}
