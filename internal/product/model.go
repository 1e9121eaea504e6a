package product

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SizeStock struct {
	Size     float64 `bson:"size" json:"size" validate:"gt=0"`
	Quantity int     `bson:"quantity" json:"quantity" validate:"gte=0"`
}

type ColorVariant struct {
	Color       string      `bson:"color" json:"color" validate:"required"`
	ColorHex    string      `bson:"colorHex" json:"colorHex" validate:"omitempty,hexcolor"`
	ImageDetail []string    `bson:"imageDetail" json:"imageDetail" validate:"max=6"`
	Sizes       []SizeStock `bson:"sizes" json:"sizes" validate:"required,min=1,dive"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	HighLight    string             `bson:"highLight" json:"highLight"`
	Desc         string             `bson:"desc" json:"desc"`
	Type         string             `bson:"type" json:"type"`
	Brand        string             `bson:"brand" json:"brand"`
	Price        float64            `bson:"price" json:"price"`
	Stock        int                `bson:"stock" json:"stock"`
	AdImage      string             `bson:"adImage" json:"adImage"`
	NavbarImage  string             `bson:"navbarImage" json:"navbarImage"`
	Colors       []ColorVariant     `bson:"colors" json:"colors"`
	Slug         string             `bson:"slug" json:"slug"`
	QuantitySold int                `bson:"quantitySold,omitempty" json:"quantitySold,omitempty"`
	ImportAt     time.Time          `bson:"importAt" json:"importAt"`
	ExportAt     *time.Time         `bson:"exportAt" json:"exportAt"`
	UpdateAt     *time.Time         `bson:"updateAt" json:"updateAt"`
	Destroyed    bool               `bson:"_destroy" json:"_destroy"`
}

type CreateInput struct {
	Name        string         `json:"name" validate:"required,min=3,max=50"`
	HighLight   string         `json:"highLight" validate:"max=255"`
	Desc        string         `json:"desc"`
	Type        string         `json:"type" validate:"required,oneof=sneaker classic running basketball football boot"`
	Brand       string         `json:"brand" validate:"required,oneof=nike adidas puma 'new balance' vans"`
	Price       float64        `json:"price" validate:"gte=0"`
	Stock       int            `json:"stock" validate:"gte=0"`
	AdImage     string         `json:"adImage"`
	NavbarImage string         `json:"navbarImage"`
	Colors      []ColorVariant `json:"colors" validate:"required,min=1,dive"`
}

const defaultColorHex = "#97bfc7"

// ListFilters narrows the paged catalog. Multi-valued fields accept
// comma-separated lists.
type ListFilters struct {
	Sort   string
	Search string
	Type   string
	Brand  string
	Color  string
	Stock  string
}

type Page struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
}

// LookupQuery is what the product assistant extracts from a customer message.
// Empty fields do not constrain the search.
type LookupQuery struct {
	Name  string
	Brand string
	Color string
	Size  string
}
