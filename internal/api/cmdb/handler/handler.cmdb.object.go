package cmdbhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	"meta_cmdb/internal/api/cmdb/render"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
	"meta_cmdb/internal/global"
)

// ObjectsHandler serves the object API, including the render endpoints.
type ObjectsHandler struct {
	*basehdl.BaseHandler[models.CmdbObject, dto.ObjectCreateInput, dto.ObjectUpdateInput]
	Objects  *cmdbsvc.ObjectsManager
	Logs     *cmdbsvc.LogsManager
	renderer *render.CmdbRender
}

// NewObjectsHandler wires the object manager, its collaborators and the
// renderer.
func NewObjectsHandler() (*ObjectsHandler, error) {
	types, err := cmdbsvc.NewTypesManager()
	if err != nil {
		return nil, fmt.Errorf("create TypesManager: %w", err)
	}
	logs, err := cmdbsvc.NewLogsManager()
	if err != nil {
		return nil, fmt.Errorf("create LogsManager: %w", err)
	}
	objects, err := cmdbsvc.NewObjectsManager(types, logs)
	if err != nil {
		return nil, fmt.Errorf("create ObjectsManager: %w", err)
	}

	maxDepth := render.DefaultMaxDepth
	if global.MongoDB_ServerConfig != nil && global.MongoDB_ServerConfig.RenderMaxDepth > 0 {
		maxDepth = global.MongoDB_ServerConfig.RenderMaxDepth
	}

	renderer := render.NewCmdbRender(objects, types, maxDepth)
	logs.WithRenderer(renderer, types)

	return &ObjectsHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbObject, dto.ObjectCreateInput, dto.ObjectUpdateInput](objects.BaseServiceMongoImpl),
		Objects:     objects,
		Logs:        logs,
		renderer:    renderer,
	}, nil
}

// HandleCreate handles POST /objects. The owning type must be active
// and the caller's group must hold the add permission.
func (h *ObjectsHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.ObjectCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Objects.Create(c.Context(), &input, h.RequestUserID(c), h.RequestGroupID(c))
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /objects/:id.
func (h *ObjectsHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		object, err := h.Objects.Get(c.Context(), publicID, h.RequestGroupID(c))
		h.HandleResponse(c, object, err)
		return nil
	})
}

// HandleUpdate handles PUT /objects/:id with a partial update body.
func (h *ObjectsHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.ObjectUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Objects.Update(c.Context(), publicID, &input, h.RequestUserID(c), h.RequestGroupID(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleSetState handles PUT /objects/:id/state, toggling the active
// flag.
func (h *ObjectsHandler) HandleSetState(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.ObjectStateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Objects.SetActive(c.Context(), publicID, input.Active, h.RequestUserID(c), h.RequestGroupID(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /objects/:id.
func (h *ObjectsHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Objects.Delete(c.Context(), publicID, h.RequestUserID(c), h.RequestGroupID(c))
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, err)
		return nil
	})
}

// HandleIterate handles GET /objects with the uniform iteration params.
func (h *ObjectsHandler) HandleIterate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		params, err := h.ParseBuilderParameters(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Objects.Iterate(c.Context(), params, h.RequestGroupID(c), h.RequestPermission(c))
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleRender handles GET /objects/:id/render, returning the resolved
// projection of one object.
func (h *ObjectsHandler) HandleRender(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		object, err := h.Objects.Get(c.Context(), publicID, h.RequestGroupID(c))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.renderer.Render(c.Context(), object)
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleRenderList handles GET /objects/render: iterate, then render
// each page entry. Total still reflects the unrendered count.
func (h *ObjectsHandler) HandleRenderList(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		params, err := h.ParseBuilderParameters(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		page, err := h.Objects.Iterate(c.Context(), params, h.RequestGroupID(c), h.RequestPermission(c))
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		rendered := h.renderer.RenderList(c.Context(), page.Results)
		h.HandleResponse(c, fiber.Map{"results": rendered, "total": page.Total}, nil)
		return nil
	})
}

// HandleReferences handles GET /objects/:id/references: the objects
// whose fields point at this one.
func (h *ObjectsHandler) HandleReferences(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		params, err := h.ParseBuilderParameters(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Objects.ReferencedBy(c.Context(), publicID, params, h.RequestGroupID(c), h.RequestPermission(c))
		h.HandleResponse(c, result, err)
		return nil
	})
}
