package cmdbhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	basehdl "meta_cmdb/internal/api/base/handler"
	dto "meta_cmdb/internal/api/cmdb/dto"
	models "meta_cmdb/internal/api/cmdb/models"
	cmdbsvc "meta_cmdb/internal/api/cmdb/service"
)

// SectionTemplatesHandler serves the reusable section template API.
type SectionTemplatesHandler struct {
	*basehdl.BaseHandler[models.CmdbSectionTemplate, dto.SectionTemplateCreateInput, dto.SectionTemplateUpdateInput]
	Templates *cmdbsvc.SectionTemplatesManager
}

// NewSectionTemplatesHandler creates a SectionTemplatesHandler.
func NewSectionTemplatesHandler() (*SectionTemplatesHandler, error) {
	manager, err := cmdbsvc.NewSectionTemplatesManager()
	if err != nil {
		return nil, fmt.Errorf("create SectionTemplatesManager: %w", err)
	}
	return &SectionTemplatesHandler{
		BaseHandler: basehdl.NewBaseHandler[models.CmdbSectionTemplate, dto.SectionTemplateCreateInput, dto.SectionTemplateUpdateInput](manager.BaseServiceMongoImpl),
		Templates:   manager,
	}, nil
}

// HandleCreate handles POST /section-templates.
func (h *SectionTemplatesHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.SectionTemplateCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Templates.Create(c.Context(), &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /section-templates/:id.
func (h *SectionTemplatesHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		template, err := h.Templates.Get(c.Context(), publicID)
		h.HandleResponse(c, template, err)
		return nil
	})
}

// HandleUpdate handles PUT /section-templates/:id. Predefined templates
// are immutable.
func (h *SectionTemplatesHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.SectionTemplateUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Templates.Update(c.Context(), publicID, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /section-templates/:id.
func (h *SectionTemplatesHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Templates.Delete(c.Context(), publicID)
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, err)
		return nil
	})
}

// HandleGlobal handles GET /section-templates/global.
func (h *SectionTemplatesHandler) HandleGlobal(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		templates, err := h.Templates.GlobalTemplates(c.Context())
		h.HandleResponse(c, templates, err)
		return nil
	})
}
