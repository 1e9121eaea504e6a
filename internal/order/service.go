package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ducnv-dev/shoestore-backend/internal/validate"
)

var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusCart: {
		StatusPending:  true,
		StatusCanceled: true,
	},
	StatusPending: {
		StatusDelivering: true,
		StatusCanceled:   true,
	},
	StatusDelivering: {
		StatusCompleted: true,
		StatusCanceled:  true,
	},
	StatusCompleted: {},
	StatusCanceled:  {},
}

var (
	ErrInvalidID               = errors.New("invalid order id")
	ErrStatusAlreadySet        = errors.New("status is already set to the desired value")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrTotalMismatch           = errors.New("total price does not match order items")
)

const defaultPageLimit = 12

type Service interface {
	CreateCart(ctx context.Context, input CreateInput) (*Order, error)
	GetDetails(ctx context.Context, id string) (*Order, error)
	AddItem(ctx context.Context, id string, input AddItemInput) (*Order, error)
	RemoveItem(ctx context.Context, id string, ref ItemRef) (*Order, error)
	IncreaseQuantity(ctx context.Context, id string, ref ItemRef) (*Order, error)
	DecreaseQuantity(ctx context.Context, id string, ref ItemRef) (*Order, error)
	AttachShippingInfo(ctx context.Context, id string, input ShippingInfoInput) (*Order, error)
	Checkout(ctx context.Context, id string, input CheckoutInput) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	SoftDelete(ctx context.Context, id string) error
	ListPage(ctx context.Context, page, limit int, opts ListOptions) (*Page, error)
}

// Options tune behaviors that are deliberately not hard-coded.
type Options struct {
	// PruneZeroQuantity removes a line item whose quantity reaches zero on a
	// decrease. When false the quantity is left as is.
	PruneZeroQuantity bool
}

type service struct {
	repo  Repository
	opts  Options
	locks *keyedLocks
}

func NewService(repo Repository, opts Options) Service {
	return &service{
		repo:  repo,
		opts:  opts,
		locks: newKeyedLocks(),
	}
}

// keyedLocks serializes mutations per order id. The existence check in
// AddItem and the read in Checkout are not isolated by the store, so two
// concurrent writers on the same order must take turns.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*lockEntry)}
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return objectID, nil
}

func itemsTotal(items []LineItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func (s *service) CreateCart(ctx context.Context, input CreateInput) (*Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	newOrder := &Order{
		Items:      make([]LineItem, 0, len(input.Items)),
		Status:     StatusCart,
		TotalPrice: input.TotalPrice,
	}

	if input.CustomerID != "" {
		customerID, err := parseID(input.CustomerID)
		if err != nil {
			return nil, err
		}
		newOrder.CustomerID = customerID
	}

	for _, item := range input.Items {
		productID, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, ErrInvalidID
		}
		newOrder.Items = append(newOrder.Items, LineItem{
			ProductID: productID,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Name:      item.Name,
			Image:     item.Image,
		})
	}

	if newOrder.TotalPrice == 0 {
		newOrder.TotalPrice = itemsTotal(newOrder.Items)
	}

	id, err := s.repo.Create(ctx, newOrder)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create cart: %w", err)
	}

	created, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load created cart %s: %w", id.Hex(), err)
	}
	return created, nil
}

func (s *service) GetDetails(ctx context.Context, id string) (*Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, orderID)
}

func (s *service) AddItem(ctx context.Context, id string, input AddItemInput) (*Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		return nil, ErrInvalidID
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Compare parsed ids, not hex strings: ObjectIDFromHex accepts uppercase
	// hex, which would slip past a string comparison and split one line item
	// into two.
	ref := input.ref()
	ref.ProductID = productID.Hex()
	for _, item := range current.Items {
		if item.ProductID == productID && item.Color == ref.Color && item.Size == ref.Size {
			return s.repo.IncrementItemQuantity(ctx, orderID, ref, 1)
		}
	}

	return s.repo.AppendItem(ctx, orderID, LineItem{
		ProductID: productID,
		Color:     input.Color,
		Size:      input.Size,
		Quantity:  1,
		Price:     input.Price,
		Name:      input.Name,
		Image:     input.Image,
	})
}

func (s *service) RemoveItem(ctx context.Context, id string, ref ItemRef) (*Order, error) {
	if err := validate.Struct(ref); err != nil {
		return nil, err
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	// $pull of an absent key is a natural no-op, so removal is idempotent.
	return s.repo.RemoveItem(ctx, orderID, ref)
}

func (s *service) IncreaseQuantity(ctx context.Context, id string, ref ItemRef) (*Order, error) {
	return s.adjustQuantity(ctx, id, ref, 1)
}

func (s *service) DecreaseQuantity(ctx context.Context, id string, ref ItemRef) (*Order, error) {
	return s.adjustQuantity(ctx, id, ref, -1)
}

func (s *service) adjustQuantity(ctx context.Context, id string, ref ItemRef, delta int) (*Order, error) {
	if err := validate.Struct(ref); err != nil {
		return nil, err
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	updated, err := s.repo.IncrementItemQuantity(ctx, orderID, ref, delta)
	if errors.Is(err, ErrItemNotFound) {
		// An absent item is not an error here: the caller gets the order
		// exactly as it stands. AddItem is the one that reports NotFound.
		return s.repo.GetByID(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}

	if delta < 0 && s.opts.PruneZeroQuantity && hasZeroQuantityItem(updated.Items) {
		return s.repo.RemoveZeroQuantityItems(ctx, orderID)
	}

	return updated, nil
}

func hasZeroQuantityItem(items []LineItem) bool {
	for _, item := range items {
		if item.Quantity <= 0 {
			return true
		}
	}
	return false
}

func (s *service) AttachShippingInfo(ctx context.Context, id string, input ShippingInfoInput) (*Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return s.repo.SetShippingInfo(ctx, orderID, input)
}

func (s *service) Checkout(ctx context.Context, id string, input CheckoutInput) (*Order, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !allowedTransitions[current.Status][StatusPending] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, StatusPending)
	}

	// The caller's total is checked against the line items, never trusted.
	expected := itemsTotal(current.Items)
	if math.Abs(expected-input.TotalPrice) > 1e-9 {
		log.Warn().
			Str("order_id", id).
			Float64("claimed", input.TotalPrice).
			Float64("expected", expected).
			Msg("service: checkout total mismatch")
		return nil, fmt.Errorf("%w: got %.2f, items sum to %.2f", ErrTotalMismatch, input.TotalPrice, expected)
	}

	return s.repo.SetCheckout(ctx, orderID, expected, input.Payment, time.Now().UTC())
}

func (s *service) UpdateStatus(ctx context.Context, id string, status string) error {
	newStatus, ok := ParseStatus(status)
	if !ok {
		return &validate.Errors{Fields: []validate.FieldError{
			{Field: "status", Message: fmt.Sprintf("status must be one of [cart pending delivering completed canceled], got %q", status)},
		}}
	}

	orderID, err := parseID(id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if current.Status == newStatus {
		return ErrStatusAlreadySet
	}
	if !allowedTransitions[current.Status][newStatus] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	return s.repo.SetStatus(ctx, orderID, newStatus)
}

func (s *service) SoftDelete(ctx context.Context, id string) error {
	orderID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, orderID)
}

func (s *service) ListPage(ctx context.Context, page, limit int, opts ListOptions) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	orders, total, err := s.repo.ListPage(ctx, int64(page), int64(limit), opts)
	if err != nil {
		return nil, err
	}

	return &Page{Orders: orders, Total: total}, nil
}
