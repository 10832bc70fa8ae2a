package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	dto "meta_cmdb/internal/api/auth/dto"
	models "meta_cmdb/internal/api/auth/models"
	authsvc "meta_cmdb/internal/api/auth/service"
	basehdl "meta_cmdb/internal/api/base/handler"
)

// UsersHandler serves user administration.
type UsersHandler struct {
	*basehdl.BaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput]
	Users *authsvc.UsersManager
}

// NewUsersHandler creates a UsersHandler.
func NewUsersHandler() (*UsersHandler, error) {
	groups, err := authsvc.NewGroupsManager()
	if err != nil {
		return nil, fmt.Errorf("create GroupsManager: %w", err)
	}
	users, err := authsvc.NewUsersManager(groups)
	if err != nil {
		return nil, fmt.Errorf("create UsersManager: %w", err)
	}
	return &UsersHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput](users.BaseServiceMongoImpl),
		Users:       users,
	}, nil
}

// HandleCreate handles POST /users.
func (h *UsersHandler) HandleCreate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.UserCreateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		created, err := h.Users.Create(c.Context(), &input)
		h.HandleResponse(c, created, err)
		return nil
	})
}

// HandleGet handles GET /users/:id.
func (h *UsersHandler) HandleGet(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, err := h.Users.Get(c.Context(), publicID)
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleUpdate handles PUT /users/:id.
func (h *UsersHandler) HandleUpdate(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		var input dto.UserUpdateInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		updated, err := h.Users.Update(c.Context(), publicID, &input)
		h.HandleResponse(c, updated, err)
		return nil
	})
}

// HandleDelete handles DELETE /users/:id.
func (h *UsersHandler) HandleDelete(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		publicID, err := h.ParsePublicID(c)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err = h.Users.Delete(c.Context(), publicID)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		h.HandleResponse(c, fiber.Map{"public_id": publicID}, nil)
		return nil
	})
}
