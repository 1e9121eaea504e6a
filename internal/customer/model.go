package customer

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// OrderRef is the customer-side pointer to one of their orders.
type OrderRef struct {
	OrderID primitive.ObjectID `bson:"orderId" json:"orderId"`
	Status  string             `bson:"status" json:"status"`
}

type Customer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserName  string             `bson:"userName" json:"userName"`
	Password  string             `bson:"password" json:"-"`
	Slug      string             `bson:"slug" json:"slug"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Role      Role               `bson:"role" json:"role"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Orders    []OrderRef         `bson:"orders" json:"orders"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type CreateInput struct {
	UserName string `json:"userName" validate:"required,min=5,max=50"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Email    string `json:"email" validate:"omitempty,email"`
	Address  string `json:"address" validate:"max=256"`
	Phone    string `json:"phone" validate:"omitempty,min=10,max=12"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ListOptions struct {
	Search string
}

type Page struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
}
