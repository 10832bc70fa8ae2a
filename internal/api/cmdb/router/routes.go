// Package router registers the CMDB domain routes: types, objects,
// categories, section templates and object logs.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	cmdbhdl "meta_cmdb/internal/api/cmdb/handler"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/api/middleware"
	apirouter "meta_cmdb/internal/api/router"
)

// Register registers all CMDB routes on v1. Static paths are registered
// before their ":id" siblings so they are matched first.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	typesHandler, err := cmdbhdl.NewTypesHandler()
	if err != nil {
		return fmt.Errorf("create TypesHandler: %w", err)
	}
	objectsHandler, err := cmdbhdl.NewObjectsHandler()
	if err != nil {
		return fmt.Errorf("create ObjectsHandler: %w", err)
	}
	categoriesHandler, err := cmdbhdl.NewCategoriesHandler()
	if err != nil {
		return fmt.Errorf("create CategoriesHandler: %w", err)
	}
	templatesHandler, err := cmdbhdl.NewSectionTemplatesHandler()
	if err != nil {
		return fmt.Errorf("create SectionTemplatesHandler: %w", err)
	}
	logsHandler, err := cmdbhdl.NewLogsHandler()
	if err != nil {
		return fmt.Errorf("create LogsHandler: %w", err)
	}

	typeView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionTypeView)}
	typeAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionTypeAdd)}
	typeEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionTypeEdit)}
	typeDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionTypeDelete)}

	apirouter.RegisterRouteWithMiddleware(v1, "/types", "GET", "/", typeView, typesHandler.HandleIterate)
	apirouter.RegisterRouteWithMiddleware(v1, "/types", "GET", "/:id", typeView, typesHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/types", "GET", "/:id/objects/count", typeView, typesHandler.HandleCountObjects)
	apirouter.RegisterRouteWithMiddleware(v1, "/types", "POST", "/", typeAdd, typesHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/types", "PUT", "/:id", typeEdit, typesHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/types", "DELETE", "/:id", typeDelete, typesHandler.HandleDelete)

	objectView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectView)}
	objectAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectAdd)}
	objectEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectEdit)}
	objectDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectDelete)}
	objectActivation := []fiber.Handler{middleware.AuthMiddleware(models.PermissionObjectActivation)}
	logView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionLogView)}

	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/", objectView, objectsHandler.HandleIterate)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/render", objectView, objectsHandler.HandleRenderList)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/:id", objectView, objectsHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/:id/render", objectView, objectsHandler.HandleRender)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/:id/references", objectView, objectsHandler.HandleReferences)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "GET", "/:id/logs", logView, logsHandler.HandleForObject)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "POST", "/", objectAdd, objectsHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "PUT", "/:id", objectEdit, objectsHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "PUT", "/:id/state", objectActivation, objectsHandler.HandleSetState)
	apirouter.RegisterRouteWithMiddleware(v1, "/objects", "DELETE", "/:id", objectDelete, objectsHandler.HandleDelete)

	categoryView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionCategoryView)}
	categoryAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionCategoryAdd)}
	categoryEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionCategoryEdit)}
	categoryDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionCategoryDelete)}

	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "GET", "/tree", categoryView, categoriesHandler.HandleTree)
	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "GET", "/", categoryView, categoriesHandler.Find)
	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "GET", "/:id", categoryView, categoriesHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "POST", "/", categoryAdd, categoriesHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "PUT", "/:id", categoryEdit, categoriesHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/categories", "DELETE", "/:id", categoryDelete, categoriesHandler.HandleDelete)

	templateView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionSectionTemplateView)}
	templateAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionSectionTemplateAdd)}
	templateEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionSectionTemplateEdit)}
	templateDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionSectionTemplateDelete)}

	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "GET", "/global", templateView, templatesHandler.HandleGlobal)
	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "GET", "/", templateView, templatesHandler.Find)
	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "GET", "/:id", templateView, templatesHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "POST", "/", templateAdd, templatesHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "PUT", "/:id", templateEdit, templatesHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/section-templates", "DELETE", "/:id", templateDelete, templatesHandler.HandleDelete)

	return nil
}
