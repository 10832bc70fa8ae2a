// Package router registers the object search routes.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/api/middleware"
	apirouter "meta_cmdb/internal/api/router"
	searchhdl "meta_cmdb/internal/api/search/handler"
)

// Register registers the search routes on v1. Searching is gated by the
// object view permission; ACL filtering happens inside the pipelines.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	searchHandler, err := searchhdl.NewSearchHandler()
	if err != nil {
		return fmt.Errorf("create SearchHandler: %w", err)
	}

	objectView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectView)}

	apirouter.RegisterRouteWithMiddleware(v1, "/search", "GET", "/quick", objectView, searchHandler.HandleQuick)
	apirouter.RegisterRouteWithMiddleware(v1, "/search", "GET", "/groups", objectView, searchHandler.HandleGroups)
	apirouter.RegisterRouteWithMiddleware(v1, "/search", "GET", "/", objectView, searchHandler.HandleSearch)

	return nil
}
