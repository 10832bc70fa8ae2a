package dto

// GroupCreateInput is the payload for creating a group.
type GroupCreateInput struct {
	Name        string   `json:"name" validate:"required,min=2,no_xss"`
	Label       string   `json:"label,omitempty" validate:"omitempty,no_xss"`
	Permissions []string `json:"permissions,omitempty"`
}

// GroupUpdateInput is the payload for updating a group.
type GroupUpdateInput struct {
	Label       *string   `json:"label,omitempty" validate:"omitempty,no_xss"`
	Permissions *[]string `json:"permissions,omitempty"`
}
