package transport

import (
	"github.com/Skotchmaster/quickcart/internal/models"
)

// UserRequest is used both for registration and for the admin full update.
type UserRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=user admin"`
}

func (r UserRequest) ParsedRole() models.Role {
	if r.Role == "" {
		return models.RoleUser
	}
	role, err := models.ParseRole(r.Role)
	if err != nil {
		return 0
	}
	return role
}

// LoginRequest binds from a form body or JSON.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type CategoryRequest struct {
	Name        string  `json:"name"        validate:"required,max=255"`
	Description *string `json:"description"`
}

type ProductRequest struct {
	Name        string   `json:"name"        validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Stock       *int     `json:"stock"       validate:"required,gte=0"`
	CategoryID  uint     `json:"category_id" validate:"required"`
}

func (r ProductRequest) Model() models.Product {
	p := models.Product{
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	return p
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SearchResponse struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}
