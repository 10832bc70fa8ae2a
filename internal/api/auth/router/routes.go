// Package router registers the auth domain routes: sessions, users
// and groups.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "meta_cmdb/internal/api/auth/handler"
	models "meta_cmdb/internal/api/auth/models"
	"meta_cmdb/internal/api/middleware"
	apirouter "meta_cmdb/internal/api/router"
)

// Register registers the auth routes on v1. Login is the only route
// without the auth middleware.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	authHandler, err := authhdl.NewAuthHandler()
	if err != nil {
		return fmt.Errorf("create AuthHandler: %w", err)
	}
	usersHandler, err := authhdl.NewUsersHandler()
	if err != nil {
		return fmt.Errorf("create UsersHandler: %w", err)
	}
	groupsHandler, err := authhdl.NewGroupsHandler()
	if err != nil {
		return fmt.Errorf("create GroupsHandler: %w", err)
	}

	sessionOnly := []fiber.Handler{middleware.AuthMiddleware("")}

	apirouter.RegisterRouteWithMiddleware(v1, "/auth", "POST", "/login", nil, authHandler.HandleLogin)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth", "POST", "/logout", sessionOnly, authHandler.HandleLogout)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth", "GET", "/me", sessionOnly, authHandler.HandleMe)
	apirouter.RegisterRouteWithMiddleware(v1, "/auth", "PUT", "/password", sessionOnly, authHandler.HandleChangePassword)

	userView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionUserView)}
	userAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionUserAdd)}
	userEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionUserEdit)}
	userDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionUserDelete)}

	apirouter.RegisterRouteWithMiddleware(v1, "/users", "GET", "/", userView, usersHandler.Find)
	apirouter.RegisterRouteWithMiddleware(v1, "/users", "GET", "/:id", userView, usersHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/users", "POST", "/", userAdd, usersHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/users", "PUT", "/:id", userEdit, usersHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/users", "DELETE", "/:id", userDelete, usersHandler.HandleDelete)

	groupView := []fiber.Handler{middleware.AuthMiddleware(models.PermissionGroupView)}
	groupAdd := []fiber.Handler{middleware.AuthMiddleware(models.PermissionGroupAdd)}
	groupEdit := []fiber.Handler{middleware.AuthMiddleware(models.PermissionGroupEdit)}
	groupDelete := []fiber.Handler{middleware.AuthMiddleware(models.PermissionGroupDelete)}

	apirouter.RegisterRouteWithMiddleware(v1, "/groups", "GET", "/", groupView, groupsHandler.Find)
	apirouter.RegisterRouteWithMiddleware(v1, "/groups", "GET", "/:id", groupView, groupsHandler.HandleGet)
	apirouter.RegisterRouteWithMiddleware(v1, "/groups", "POST", "/", groupAdd, groupsHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/groups", "PUT", "/:id", groupEdit, groupsHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/groups", "DELETE", "/:id", groupDelete, groupsHandler.HandleDelete)

	// Generic admin CRUD surface for users, for bulk administration.
	r.RegisterCRUDRoutes(v1, "/admin/users", usersHandler, apirouter.ReadWriteConfig, "base.user-management.user")

	return nil
}
