package order

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusCart       OrderStatus = "cart"
	StatusPending    OrderStatus = "pending"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCanceled   OrderStatus = "canceled"
)

func (os OrderStatus) String() string {
	return string(os)
}

// ParseStatus reports whether s names a known order status.
func ParseStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusCart, StatusPending, StatusDelivering, StatusCompleted, StatusCanceled:
		return OrderStatus(s), true
	}
	return "", false
}

// LineItem is one product variant inside an order. Its identity within the
// order is the (productId, color, size) triple; price, name and image are a
// snapshot of the product at add time.
type LineItem struct {
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Color     string             `bson:"color" json:"color"`
	Size      string             `bson:"size" json:"size"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomerID primitive.ObjectID `bson:"customerId,omitempty" json:"customerId,omitempty"`
	Items      []LineItem         `bson:"items" json:"items"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	Status     OrderStatus        `bson:"status" json:"status"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address    string             `bson:"address,omitempty" json:"address,omitempty"`
	Payment    string             `bson:"payment,omitempty" json:"payment,omitempty"`
	// CreatedAt marks "order placed", not "cart opened": it stays nil until
	// checkout stamps it.
	CreatedAt *time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Destroyed bool       `bson:"_destroy" json:"_destroy"`
}

// ItemRef addresses one line item by its composite key.
type ItemRef struct {
	ProductID string `json:"productId" validate:"required,objectid"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

type NewItem struct {
	ProductID string  `json:"productId" validate:"required,objectid"`
	Color     string  `json:"color" validate:"required"`
	Size      string  `json:"size" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"gte=0"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
}

type CreateInput struct {
	CustomerID string    `json:"customerId" validate:"omitempty,objectid"`
	Items      []NewItem `json:"items" validate:"dive"`
	TotalPrice float64   `json:"totalPrice" validate:"gte=0"`
}

// AddItemInput carries the denormalized product snapshot for a new line item.
// Quantity is deliberately absent: adding always adds exactly one unit.
type AddItemInput struct {
	ProductID string  `json:"productId" validate:"required,objectid"`
	Color     string  `json:"color" validate:"required"`
	Size      string  `json:"size" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
}

func (in AddItemInput) ref() ItemRef {
	return ItemRef{ProductID: in.ProductID, Color: in.Color, Size: in.Size}
}

type ShippingInfoInput struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required,min=10,max=12"`
	Address string `json:"address" validate:"required,max=256"`
}

type CheckoutInput struct {
	TotalPrice float64 `json:"totalPrice" validate:"gte=0"`
	Payment    string  `json:"payment" validate:"required"`
}

// ListOptions narrows and orders the admin listing.
type ListOptions struct {
	Sort   string
	Search string
}

type Page struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
}
