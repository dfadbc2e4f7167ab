package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID               uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name             string     `gorm:"not null"                 json:"name"`
	Email            string     `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash     string     `gorm:"not null"                 json:"-"`
	Role             string     `gorm:"not null;default:user"    json:"role"`
	ResetToken       string     `gorm:"index"                    json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	InStock     bool      `gorm:"default:true"             json:"inStock"`
	Sales       uint      `gorm:"default:0"                json:"sales"`
	Recommended bool      `gorm:"default:false"            json:"recommended"`
	CreatedAt   time.Time `json:"dateAdded"`
}

type Order struct {
	ID            uint        `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID        uint        `gorm:"index;not null"              json:"user_id"`
	Items         []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Total         float64     `gorm:"not null"                    json:"total"`
	Address       string      `json:"address"`
	Phone         string      `json:"phone"`
	PaymentMethod string      `json:"paymentMethod"`
	Fulfilled     bool        `gorm:"default:false"               json:"fulfilled"`
	CreatedAt     time.Time   `json:"date"`
}

// OrderItem is a snapshot of the product at purchase time. Later price or
// name changes on the live product never touch past orders.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"  json:"id"`
	OrderID   uint    `gorm:"index;not null"            json:"order_id"`
	ProductID uint    `gorm:"not null"                  json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  uint    `gorm:"not null;check:quantity>0" json:"quantity"`
}
