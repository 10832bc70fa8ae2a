// Package dto - request payloads of the auth domain.
package dto

// UserCreateInput is the payload for creating a user.
type UserCreateInput struct {
	UserName  string `json:"user_name" validate:"required,min=3,no_xss"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty" validate:"omitempty,no_xss"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,no_xss"`
	Password  string `json:"password" validate:"required,min=8"`
	GroupID   int64  `json:"group_id" validate:"required,gt=0"`
	Active    *bool  `json:"active,omitempty"`
}

// UserUpdateInput is the payload for updating a user. The password is
// changed through its own endpoint, not here.
type UserUpdateInput struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,no_xss"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,no_xss"`
	GroupID   *int64  `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	Active    *bool   `json:"active,omitempty"`
}

// UserLoginInput is the login payload. Hwid identifies the device so
// each device keeps its own session token.
type UserLoginInput struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
	Hwid     string `json:"hwid" validate:"required"`
}

// UserLogoutInput drops the session of one device.
type UserLogoutInput struct {
	Hwid string `json:"hwid" validate:"required"`
}

// UserChangePasswordInput rotates a user's password.
type UserChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
