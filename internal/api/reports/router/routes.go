// Package router registers the reports domain routes.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"meta_cmdb/internal/api/middleware"
	reporthdl "meta_cmdb/internal/api/reports/handler"
	models "meta_cmdb/internal/api/reports/models"
	apirouter "meta_cmdb/internal/api/router"
)

// Register registers all report routes on v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	handler, err := reporthdl.NewReportsHandler()
	if err != nil {
		return fmt.Errorf("create ReportsHandler: %w", err)
	}

	view := []fiber.Handler{middleware.AuthMiddleware(models.PermissionReportView)}
	add := []fiber.Handler{middleware.AuthMiddleware(models.PermissionReportAdd)}
	edit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionReportEdit)}
	del := []fiber.Handler{middleware.AuthMiddleware(models.PermissionReportDelete)}
	run := []fiber.Handler{middleware.AuthMiddleware(models.PermissionReportRun)}

	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "GET", "/", view, handler.Find)
	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "GET", "/:id", view, handler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "POST", "/", add, handler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "POST", "/:id/run", run, handler.HandleRun)
	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "PUT", "/:id", edit, handler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/reports", "DELETE", "/:id", del, handler.HandleDelete)

	return nil
}
