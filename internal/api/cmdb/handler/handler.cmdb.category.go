package cmdbhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
)

// CategoriesHandler serves the category tree API.
type CategoriesHandler struct {
	*basehdl.BaseHandler[models.CmdbCategory, dto.CategoryCreateInput, dto.CategoryUpdateInput]
	Categories *cmdbsvc.CategoriesManager
}

// NewCategoriesHandler creates a CategoriesHandler.
func NewCategoriesHandler() (*CategoriesHandler, error) {
	manager, err := cmdbsvc.NewCategoriesManager()
	if err != nil {
		return nil, fmt.Errorf("create CategoriesManager: %w", err)
	}
	return &CategoriesHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbCategory, dto.CategoryCreateInput, dto.CategoryUpdateInput](manager.BaseServiceMongoImpl),
		Categories:  manager,
	}, nil
}

// HandleCreate handles POST /categories.
func (h *CategoriesHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.CategoryCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Categories.Create(c.Context(), &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /categories/:id.
func (h *CategoriesHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		category, err := h.Categories.Get(c.Context(), publicID)
		h.HandleResponse(c, category, err)
		return nil
	})
}

// HandleUpdate handles PUT /categories/:id.
func (h *CategoriesHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.CategoryUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Categories.Update(c.Context(), publicID, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /categories/:id. Children are reparented
// to the root.
func (h *CategoriesHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Categories.Delete(c.Context(), publicID)
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, err)
		return nil
	})
}

// HandleTree handles GET /categories/tree.
func (h *CategoriesHandler) HandleTree(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		tree, err := h.Categories.Tree(c.Context())
		h.HandleResponse(c, tree, err)
		return nil
	})
}
