package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

var (
	ErrInvalidID   = errors.New("invalid customer id")
	ErrInvalidRole = errors.New("invalid customer role")
	// ErrUnauthorized covers both an unknown email and a wrong password so a
	// login probe cannot tell which it hit.
	ErrUnauthorized = errors.New("email or password is incorrect")
)

const defaultPageLimit = 12

type Service interface {
	Create(ctx context.Context, input CreateInput) (*Customer, error)
	GetDetails(ctx context.Context, id string) (*Customer, error)
	ListPage(ctx context.Context, page, limit int, opts ListOptions) (*Page, error)
	Login(ctx context.Context, input LoginInput) (*Customer, error)
	Update(ctx context.Context, id string, properties map[string]any) (*Customer, error)
	ChangeRole(ctx context.Context, id string, role string) (*Customer, error)
	AddOrder(ctx context.Context, id string, orderID string, status string) (*Customer, error)
	UpdateOrderStatus(ctx context.Context, id string, orderID string, status string) (*Customer, error)
	Deactivate(ctx context.Context, id string) error
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

func (s *service) Create(ctx context.Context, input CreateInput) (*Customer, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash customer password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	newCustomer := &Customer{
		UserName: input.UserName,
		Password: string(hashed),
		Slug:     slug.Make(input.UserName),
		Email:    strings.ToLower(input.Email),
		Role:     RoleClient,
		Address:  input.Address,
		Phone:    input.Phone,
	}

	id, err := s.repo.Create(ctx, newCustomer)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("service: failed to create customer: %w", err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load created customer %s: %w", id.Hex(), err)
	}
	return created, nil
}

func (s *service) GetDetails(ctx context.Context, id string) (*Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, customerID)
}

func (s *service) ListPage(ctx context.Context, page, limit int, opts ListOptions) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	customers, total, err := s.repo.ListPage(ctx, int64(page), int64(limit), opts)
	if err != nil {
		return nil, err
	}
	return &Page{Customers: customers, Total: total}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Customer, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	found, err := s.repo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("service: failed to look up customer for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(input.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	return found, nil
}

func (s *service) Update(ctx context.Context, id string, properties map[string]any) (*Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return nil, &validate.Errors{Fields: []validate.FieldError{
			{Field: "properties", Message: "properties must not be empty"},
		}}
	}
	return s.repo.Update(ctx, customerID, bson.M(properties))
}

func (s *service) ChangeRole(ctx context.Context, id string, role string) (*Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	switch Role(role) {
	case RoleAdmin, RoleClient:
	default:
		return nil, ErrInvalidRole
	}

	return s.repo.Update(ctx, customerID, bson.M{"role": role})
}

func (s *service) AddOrder(ctx context.Context, id string, orderID string, status string) (*Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	refID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return s.repo.AppendOrderRef(ctx, customerID, OrderRef{OrderID: refID, Status: status})
}

func (s *service) UpdateOrderStatus(ctx context.Context, id string, orderID string, status string) (*Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	refID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, ErrInvalidID
	}

	return s.repo.SetOrderRefStatus(ctx, customerID, refID, status)
}

func (s *service) Deactivate(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, customerID)
}
