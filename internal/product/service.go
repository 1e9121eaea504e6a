package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

var ErrInvalidID = errors.New("invalid product id")

const (
	defaultPageLimit = 24
	topSellersLimit  = 3
	sliderLimit      = 6
)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Product, error)
	GetDetails(ctx context.Context, id string) (*Product, error)
	GetAll(ctx context.Context) ([]Product, error)
	ListPage(ctx context.Context, page, limit int, filters ListFilters) (*Page, error)
	Update(ctx context.Context, id string, properties map[string]any) (*Product, error)
	SoftDelete(ctx context.Context, id string) error
	AddQuantitySold(ctx context.Context, id string, quantity int) (*Product, error)
	CountAll(ctx context.Context) (int64, error)
	TopBestSellers(ctx context.Context) ([]Product, error)
	ByBrandAndType(ctx context.Context, brand, productType string) ([]Product, error)
	FindByAttributes(ctx context.Context, query LookupQuery) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return objectID, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check product name: %w", err)
	}
	if exists {
		return nil, ErrNameExists
	}

	newProduct := &Product{
		Name:        input.Name,
		HighLight:   input.HighLight,
		Desc:        input.Desc,
		Type:        input.Type,
		Brand:       strings.ToLower(input.Brand),
		Price:       input.Price,
		Stock:       input.Stock,
		AdImage:     input.AdImage,
		NavbarImage: input.NavbarImage,
		Colors:      input.Colors,
		Slug:        slug.Make(input.Name),
	}

	for i := range newProduct.Colors {
		if newProduct.Colors[i].ColorHex == "" {
			newProduct.Colors[i].ColorHex = defaultColorHex
		}
		if newProduct.Colors[i].ImageDetail == nil {
			newProduct.Colors[i].ImageDetail = []string{}
		}
	}

	// Stock is the sum over every color and size unless the caller pins it.
	if newProduct.Stock == 0 {
		newProduct.Stock = aggregateStock(newProduct.Colors)
	}

	id, err := s.repo.Create(ctx, newProduct)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load created product %s: %w", id.Hex(), err)
	}
	return created, nil
}

func aggregateStock(colors []ColorVariant) int {
	total := 0
	for _, color := range colors {
		for _, size := range color.Sizes {
			total += size.Quantity
		}
	}
	return total
}

func (s *service) GetDetails(ctx context.Context, id string) (*Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, productID)
}

func (s *service) GetAll(ctx context.Context) ([]Product, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) ListPage(ctx context.Context, page, limit int, filters ListFilters) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	products, total, err := s.repo.ListPage(ctx, int64(page), int64(limit), filters)
	if err != nil {
		return nil, err
	}
	return &Page{Products: products, Total: total}, nil
}

func (s *service) Update(ctx context.Context, id string, properties map[string]any) (*Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return nil, &validate.Errors{Fields: []validate.FieldError{
			{Field: "properties", Message: "properties must not be empty"},
		}}
	}
	return s.repo.Update(ctx, productID, bson.M(properties))
}

func (s *service) SoftDelete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, productID)
}

func (s *service) AddQuantitySold(ctx context.Context, id string, quantity int) (*Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, &validate.Errors{Fields: []validate.FieldError{
			{Field: "quantity", Message: "quantity must be at least 1"},
		}}
	}
	return s.repo.AddQuantitySold(ctx, productID, quantity)
}

func (s *service) CountAll(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

func (s *service) TopBestSellers(ctx context.Context) ([]Product, error) {
	return s.repo.TopBestSellers(ctx, topSellersLimit)
}

func (s *service) ByBrandAndType(ctx context.Context, brand, productType string) ([]Product, error) {
	return s.repo.ByBrandAndType(ctx, strings.ToLower(brand), productType, sliderLimit)
}

func (s *service) FindByAttributes(ctx context.Context, query LookupQuery) (*Product, error) {
	return s.repo.FindByAttributes(ctx, query)
}
