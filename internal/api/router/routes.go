// Package router holds the route registration plumbing shared by the
// domain routers.
//
// Middleware registration note: in Fiber v3 passing middleware inline
// (router.Get(path, middleware, handler)) silently skips the
// middleware. Routes with middleware must go through
// RegisterRouteWithMiddleware, which registers them via .Use() on a
// route group.
package router

import (
	"github.com/gofiber/fiber/v3"

	"meta_cmdb/internal/api/middleware"
)

// CRUDHandler is the handler surface RegisterCRUDRoutes expects. Every
// BaseHandler satisfies it.
type CRUDHandler interface {
	// Create
	InsertOne(c fiber.Ctx) error
	InsertMany(c fiber.Ctx) error

	// Read
	Find(c fiber.Ctx) error
	FindOne(c fiber.Ctx) error
	FindOneById(c fiber.Ctx) error
	FindOneByPublicId(c fiber.Ctx) error
	FindWithPagination(c fiber.Ctx) error

	// Update
	UpdateOne(c fiber.Ctx) error
	UpdateById(c fiber.Ctx) error

	// Delete
	DeleteOne(c fiber.Ctx) error
	DeleteById(c fiber.Ctx) error

	// Other
	CountDocuments(c fiber.Ctx) error
	Distinct(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
	DocumentExists(c fiber.Ctx) error
}

// Router carries the app for domain route registration.
type Router struct {
	app *fiber.App
}

// CRUDConfig selects which generic operations a collection exposes.
type CRUDConfig struct {
	// Create
	InsOne  bool
	InsMany bool

	// Read
	Find       bool
	FindOne    bool
	FindById   bool
	FindPublic bool
	Paginate   bool

	// Update
	UpdOne  bool
	UpdById bool

	// Delete
	DelOne  bool
	DelById bool

	// Other
	Count    bool
	Distinct bool
	Upsert   bool
	Exists   bool
}

// Shared configs for the admin CRUD surface.
var (
	// ReadOnlyConfig exposes only read operations.
	ReadOnlyConfig = CRUDConfig{
		Find: true, FindOne: true, FindById: true,
		FindPublic: true, Paginate: true,
		Count: true, Distinct: true, Exists: true,
	}

	// ReadWriteConfig exposes the full CRUD surface.
	ReadWriteConfig = CRUDConfig{
		InsOne: true, InsMany: true,
		Find: true, FindOne: true, FindById: true,
		FindPublic: true, Paginate: true,
		UpdOne: true, UpdById: true,
		DelOne: true, DelById: true,
		Count: true, Distinct: true,
		Upsert: true, Exists: true,
	}
)

// RoutePrefix holds the base API prefixes.
type RoutePrefix struct {
	Base string // /api
	V1   string // /api/v1
}

// NewRoutePrefix returns the default prefixes.
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter creates a Router.
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// RegisterRouteWithMiddleware registers one route with its middleware
// chain through a route group. See the package comment for why inline
// middleware registration cannot be used with Fiber v3.
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// RegisterCRUDRoutes registers the generic admin CRUD routes for one
// collection under prefix, gated by the view/add/edit/delete
// permissions derived from permissionPrefix.
func (r *Router) RegisterCRUDRoutes(router fiber.Router, prefix string, h CRUDHandler, config CRUDConfig, permissionPrefix string) {
	authAdd := middleware.AuthMiddleware(permissionPrefix + ".add")
	authView := middleware.AuthMiddleware(permissionPrefix + ".view")
	authEdit := middleware.AuthMiddleware(permissionPrefix + ".edit")
	authDelete := middleware.AuthMiddleware(permissionPrefix + ".delete")

	// Create
	if config.InsOne {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-one", []fiber.Handler{authAdd}, h.InsertOne)
	}
	if config.InsMany {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/insert-many", []fiber.Handler{authAdd}, h.InsertMany)
	}

	// Read
	if config.Find {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find", []fiber.Handler{authView}, h.Find)
	}
	if config.FindOne {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-one", []fiber.Handler{authView}, h.FindOne)
	}
	if config.FindById {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-by-id/:id", []fiber.Handler{authView}, h.FindOneById)
	}
	if config.FindPublic {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-by-public-id/:id", []fiber.Handler{authView}, h.FindOneByPublicId)
	}
	if config.Paginate {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/find-with-pagination", []fiber.Handler{authView}, h.FindWithPagination)
	}

	// Update
	if config.UpdOne {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-one", []fiber.Handler{authEdit}, h.UpdateOne)
	}
	if config.UpdById {
		RegisterRouteWithMiddleware(router, prefix, "PUT", "/update-by-id/:id", []fiber.Handler{authEdit}, h.UpdateById)
	}

	// Delete
	if config.DelOne {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-one", []fiber.Handler{authDelete}, h.DeleteOne)
	}
	if config.DelById {
		RegisterRouteWithMiddleware(router, prefix, "DELETE", "/delete-by-id/:id", []fiber.Handler{authDelete}, h.DeleteById)
	}

	// Other
	if config.Count {
		// Counting only needs a valid session.
		authOnly := middleware.AuthMiddleware("")
		RegisterRouteWithMiddleware(router, prefix, "GET", "/count", []fiber.Handler{authOnly}, h.CountDocuments)
	}
	if config.Distinct {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/distinct", []fiber.Handler{authView}, h.Distinct)
	}
	if config.Upsert {
		RegisterRouteWithMiddleware(router, prefix, "POST", "/upsert-one", []fiber.Handler{authEdit}, h.Upsert)
	}
	if config.Exists {
		RegisterRouteWithMiddleware(router, prefix, "GET", "/exists", []fiber.Handler{authView}, h.DocumentExists)
	}
}

// RegisterFunc is one domain's route registration hook.
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes mounts every domain under /api/v1. The caller passes the
// Register function of each domain, which keeps the domain packages
// free of cross-imports.
func SetupRoutes(app *fiber.App, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()
	v1 := app.Group(prefix.V1)
	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
