package transport

import (
	"github.com/avelorn/storefront/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type UserProfile struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"isAdmin"`
}

func ProfileFromUser(u *models.User) UserProfile {
	return UserProfile{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    u.Role,
		IsAdmin: u.IsAdmin(),
	}
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

type ProductRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	InStock     *bool   `json:"inStock"`
	Recommended *bool   `json:"recommended"`
}

type OrderItemRequest struct {
	ProductID uint    `json:"product"  validate:"required"`
	Name      string  `json:"name"     validate:"required"`
	Price     float64 `json:"price"    validate:"gte=0"`
	Image     string  `json:"image"`
	Quantity  uint    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
	Total         float64            `json:"total"         validate:"required,gt=0"`
	Address       string             `json:"address"       validate:"required"`
	Phone         string             `json:"phone"         validate:"required"`
	PaymentMethod string             `json:"paymentMethod" validate:"required"`
}

type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminOrder is an order with its owner attached, for the admin order list.
type AdminOrder struct {
	models.Order
	User UserSummary `json:"user"`
}

type TopProduct struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Sales uint   `json:"sales"`
}

type StatsResponse struct {
	Revenue         float64      `json:"revenue"`
	OrderCount      int64        `json:"orderCount"`
	FulfilledOrders int64        `json:"fulfilledOrders"`
	PendingOrders   int64        `json:"pendingOrders"`
	ProductCount    int64        `json:"productCount"`
	TopProducts     []TopProduct `json:"topProducts"`
}
