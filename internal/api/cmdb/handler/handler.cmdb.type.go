// Package cmdbhdl - HTTP handlers for the CMDB domain: type schemas,
// objects, categories, section templates and object logs.
package cmdbhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
)

// TypesHandler serves the type schema API.
type TypesHandler struct {
	*basehdl.BaseHandler[models.CmdbType, dto.TypeCreateInput, dto.TypeUpdateInput]
	Types *cmdbsvc.TypesManager
}

// NewTypesHandler creates a TypesHandler wired to a fresh TypesManager.
func NewTypesHandler() (*TypesHandler, error) {
	manager, err := cmdbsvc.NewTypesManager()
	if err != nil {
		return nil, fmt.Errorf("create TypesManager: %w", err)
	}
	return &TypesHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbType, dto.TypeCreateInput, dto.TypeUpdateInput](manager.BaseServiceMongoImpl),
		Types:       manager,
	}, nil
}

// HandleCreate handles POST /types.
func (h *TypesHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.TypeCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Types.Create(c.Context(), &input, h.RequestUserID(c))
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /types/:id.
func (h *TypesHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		t, err := h.Types.Get(c.Context(), publicID)
		h.HandleResponse(c, t, err)
		return nil
	})
}

// HandleUpdate handles PUT /types/:id with a partial update body.
func (h *TypesHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.TypeUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Types.Update(c.Context(), publicID, &input, h.RequestUserID(c))
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /types/:id. Deletion is refused while
// objects of the type still exist.
func (h *TypesHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Types.Delete(c.Context(), publicID)
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, err)
		return nil
	})
}

// HandleIterate handles GET /types with filter/limit/skip/sort/order
// query params. ACL stages apply when the route carries a permission.
func (h *TypesHandler) HandleIterate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		params, err := h.ParseBuilderParameters(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		result, err := h.Types.Iterate(c.Context(), params, h.RequestGroupID(c), h.RequestPermission(c))
		h.HandleResponse(c, result, err)
		return nil
	})
}

// HandleCountObjects handles GET /types/:id/objects/count.
func (h *TypesHandler) HandleCountObjects(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		count, err := h.Types.CountObjects(c.Context(), publicID)
		h.HandleResponse(c, fiber.Map{"type_id": publicID, "count": count}, err)
		return nil
	})
}
