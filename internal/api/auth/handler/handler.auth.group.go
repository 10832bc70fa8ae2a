package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	dto "meta_cmdb/internal/api/auth/dto"
	models "meta_cmdb/internal/api/auth/models"
	authsvc "meta_cmdb/internal/api/auth/service"
	basehdl "meta_cmdb/internal/api/base/handler"
)

// GroupsHandler serves group administration.
type GroupsHandler struct {
	*basehdl.BaseHandler[models.Group, dto.GroupCreateInput, dto.GroupUpdateInput]
	Groups *authsvc.GroupsManager
}

// NewGroupsHandler creates a GroupsHandler.
func NewGroupsHandler() (*GroupsHandler, error) {
	groups, err := authsvc.NewGroupsManager()
	if err != nil {
		return nil, fmt.Errorf("create GroupsManager: %w", err)
	}
	return &GroupsHandler{
		BaseHandler: basehdl.NewBaseHandler[models.Group, dto.GroupCreateInput, dto.GroupUpdateInput](groups.BaseServiceMongoImpl),
		Groups:      groups,
	}, nil
}

// HandleCreate handles POST /groups.
func (h *GroupsHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.GroupCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Groups.Create(c.Context(), &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /groups/:id.
func (h *GroupsHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		group, err := h.Groups.Get(c.Context(), publicID)
		h.HandleResponse(c, group, err)
		return nil
	})
}

// HandleUpdate handles PUT /groups/:id.
func (h *GroupsHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.GroupUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Groups.Update(c.Context(), publicID, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /groups/:id.
func (h *GroupsHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Groups.Delete(c.Context(), publicID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, nil)
		return nil
	})
}
