package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "orders"

var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("order item not found")
)

type Repository interface {
	Create(ctx context.Context, order *Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error)
	AppendItem(ctx context.Context, id primitive.ObjectID, item LineItem) (*Order, error)
	IncrementItemQuantity(ctx context.Context, id primitive.ObjectID, ref ItemRef, delta int) (*Order, error)
	RemoveItem(ctx context.Context, id primitive.ObjectID, ref ItemRef) (*Order, error)
	RemoveZeroQuantityItems(ctx context.Context, id primitive.ObjectID) (*Order, error)
	SetShippingInfo(ctx context.Context, id primitive.ObjectID, info ShippingInfoInput) (*Order, error)
	SetCheckout(ctx context.Context, id primitive.ObjectID, totalPrice float64, payment string, placedAt time.Time) (*Order, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status OrderStatus) error
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	ListPage(ctx context.Context, page, limit int64, opts ListOptions) ([]Order, int64, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// live matches one order that has not been soft-deleted. Every read and every
// mutation goes through it, so a destroyed order is as good as gone.
func live(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "_destroy": false}
}

func itemMatch(ref ItemRef) (bson.M, error) {
	productID, err := primitive.ObjectIDFromHex(ref.ProductID)
	if err != nil {
		return nil, fmt.Errorf("repository: invalid product id %q: %w", ref.ProductID, err)
	}
	return bson.M{"productId": productID, "color": ref.Color, "size": ref.Size}, nil
}

func (r *mongoRepository) returnUpdated(ctx context.Context, filter, update bson.M) (*Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update order: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Create(ctx context.Context, order *Order) (primitive.ObjectID, error) {
	if order.Items == nil {
		order.Items = []LineItem{}
	}
	if order.Status == "" {
		order.Status = StatusCart
	}
	order.Destroyed = false

	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("repository: unexpected inserted id type %T", res.InsertedID)
	}
	order.ID = id

	return id, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	var order Order
	err := r.coll.FindOne(ctx, live(id)).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id.Hex(), err)
	}
	return &order, nil
}

func (r *mongoRepository) AppendItem(ctx context.Context, id primitive.ObjectID, item LineItem) (*Order, error) {
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.returnUpdated(ctx, live(id), update)
}

func (r *mongoRepository) IncrementItemQuantity(ctx context.Context, id primitive.ObjectID, ref ItemRef, delta int) (*Order, error) {
	match, err := itemMatch(ref)
	if err != nil {
		return nil, err
	}

	filter := live(id)
	filter["items"] = bson.M{"$elemMatch": match}

	update := bson.M{
		"$inc": bson.M{"items.$.quantity": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	updated, err := r.returnUpdated(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		// The filter also matches on the item, so "no document" may just mean
		// the item is absent while the order is alive.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrItemNotFound
	}
	return updated, err
}

func (r *mongoRepository) RemoveItem(ctx context.Context, id primitive.ObjectID, ref ItemRef) (*Order, error) {
	match, err := itemMatch(ref)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$pull": bson.M{"items": match},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.returnUpdated(ctx, live(id), update)
}

func (r *mongoRepository) RemoveZeroQuantityItems(ctx context.Context, id primitive.ObjectID) (*Order, error) {
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"quantity": bson.M{"$lte": 0}}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.returnUpdated(ctx, live(id), update)
}

func (r *mongoRepository) SetShippingInfo(ctx context.Context, id primitive.ObjectID, info ShippingInfoInput) (*Order, error) {
	update := bson.M{
		"$set": bson.M{
			"name":      info.Name,
			"phone":     info.Phone,
			"address":   info.Address,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.returnUpdated(ctx, live(id), update)
}

func (r *mongoRepository) SetCheckout(ctx context.Context, id primitive.ObjectID, totalPrice float64, payment string, placedAt time.Time) (*Order, error) {
	update := bson.M{
		"$set": bson.M{
			"status":     StatusPending,
			"totalPrice": totalPrice,
			"payment":    payment,
			"createdAt":  placedAt,
			"updatedAt":  placedAt,
		},
	}
	return r.returnUpdated(ctx, live(id), update)
}

func (r *mongoRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status OrderStatus) error {
	update := bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, live(id), update)
	if err != nil {
		return fmt.Errorf("repository: failed to update order status %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"_destroy": true, "updatedAt": time.Now().UTC()},
	}

	// Matches regardless of the current _destroy value so the operation stays
	// idempotent.
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("repository: failed to soft delete order %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) ListPage(ctx context.Context, page, limit int64, listOpts ListOptions) ([]Order, int64, error) {
	filter := bson.M{
		"_destroy": false,
		"status":   bson.M{"$ne": StatusCart},
	}

	if listOpts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(listOpts.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"address": pattern},
			{"name": pattern},
			{"status": pattern},
			{"phone": pattern},
		}
	}

	findOpts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	switch listOpts.Sort {
	case "newest":
		findOpts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	case "oldest":
		findOpts.SetSort(bson.D{{Key: "createdAt", Value: 1}})
	case "low-high":
		findOpts.SetSort(bson.D{{Key: "totalPrice", Value: 1}})
	case "high-low":
		findOpts.SetSort(bson.D{{Key: "totalPrice", Value: -1}})
	}

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query orders page: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to decode orders page: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count orders: %w", err)
	}

	return orders, total, nil
}
