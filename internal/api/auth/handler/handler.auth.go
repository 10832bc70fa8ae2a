// Package authhdl serves login, session and user management routes.
package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	dto "meta_cmdb/internal/api/auth/dto"
	models "meta_cmdb/internal/api/auth/models"
	authsvc "meta_cmdb/internal/api/auth/service"
	basehdl "meta_cmdb/internal/api/base/handler"
)

// AuthHandler serves the session endpoints: login, logout, current
// user and password rotation.
type AuthHandler struct {
	*basehdl.BaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput]
	Users *authsvc.UsersManager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler() (*AuthHandler, error) {
	groups, err := authsvc.NewGroupsManager()
	if err != nil {
		return nil, fmt.Errorf("create GroupsManager: %w", err)
	}
	users, err := authsvc.NewUsersManager(groups)
	if err != nil {
		return nil, fmt.Errorf("create UsersManager: %w", err)
	}
	return &AuthHandler{
		BaseHandler: basehdl.NewBaseHandler[models.User, dto.UserCreateInput, dto.UserUpdateInput](users.BaseServiceMongoImpl),
		Users:       users,
	}, nil
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.UserLoginInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		user, token, err := h.Users.Login(c.Context(), &input)
		if err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		h.HandleResponse(c, fiber.Map{"user": user, "token": token}, nil)
		return nil
	})
}

// HandleLogout handles POST /auth/logout.
func (h *AuthHandler) HandleLogout(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.UserLogoutInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.Users.Logout(c.Context(), h.RequestUserID(c), &input)
		h.HandleResponse(c, fiber.Map{"logged_out": err == nil}, err)
		return nil
	})
}

// HandleMe handles GET /auth/me.
func (h *AuthHandler) HandleMe(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		user, err := h.Users.Get(c.Context(), h.RequestUserID(c))
		h.HandleResponse(c, user, err)
		return nil
	})
}

// HandleChangePassword handles PUT /auth/password.
func (h *AuthHandler) HandleChangePassword(c fiber.Ctx) error {
	return h.SafeHandler(c, func() error {
		var input dto.UserChangePasswordInput
		if err := h.ParseRequestBody(c, &input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}
		if err := h.ValidateInput(&input); err != nil {
			h.HandleResponse(c, nil, err)
			return nil
		}

		err := h.Users.ChangePassword(c.Context(), h.RequestUserID(c), &input)
		h.HandleResponse(c, fiber.Map{"changed": err == nil}, err)
		return nil
	})
}
