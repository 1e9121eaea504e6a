package customer

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

const collectionName = "customers"

var (
	ErrNotFound         = errors.New("customer not found")
	ErrEmailExists      = errors.New("customer with this email already exists")
	ErrOrderRefNotFound = errors.New("order reference not found on customer")
)

type Repository interface {
	Create(ctx context.Context, customer *Customer) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	ListPage(ctx context.Context, page, limit int64, opts ListOptions) ([]Customer, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, properties bson.M) (*Customer, error)
	AppendOrderRef(ctx context.Context, id primitive.ObjectID, ref OrderRef) (*Customer, error)
	SetOrderRefStatus(ctx context.Context, id, orderID primitive.ObjectID, status string) (*Customer, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

func active(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "isActive": true}
}

func (r *mongoRepository) Create(ctx context.Context, customer *Customer) (primitive.ObjectID, error) {
	if customer.Orders == nil {
		customer.Orders = []OrderRef{}
	}
	customer.IsActive = true
	customer.CreatedAt = time.Now().UTC()

	res, err := r.coll.InsertOne(ctx, customer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrEmailExists
		}
		return primitive.NilObjectID, fmt.Errorf("repository: failed to insert customer: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("repository: unexpected inserted id type %T", res.InsertedID)
	}
	customer.ID = id

	return id, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Customer, error) {
	var customer Customer
	err := r.coll.FindOne(ctx, active(id)).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer by id %s: %w", id.Hex(), err)
	}
	return &customer, nil
}

func (r *mongoRepository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	var customer Customer
	err := r.coll.FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select customer by email: %w", err)
	}
	return &customer, nil
}

func (r *mongoRepository) ListPage(ctx context.Context, page, limit int64, listOpts ListOptions) ([]Customer, int64, error) {
	filter := bson.M{"isActive": true}

	if listOpts.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(listOpts.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"userName": pattern},
			{"email": pattern},
			{"phone": pattern},
			{"address": pattern},
		}
	}

	findOpts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query customers page: %w", err)
	}
	defer cursor.Close(ctx)

	customers := make([]Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to decode customers page: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count customers: %w", err)
	}

	return customers, total, nil
}

func (r *mongoRepository) returnUpdated(ctx context.Context, filter, update bson.M) (*Customer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Customer
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update customer: %w", err)
	}
	return &updated, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, properties bson.M) (*Customer, error) {
	delete(properties, "_id")
	delete(properties, "password")
	properties["updatedAt"] = time.Now().UTC()

	return r.returnUpdated(ctx, active(id), bson.M{"$set": properties})
}

func (r *mongoRepository) AppendOrderRef(ctx context.Context, id primitive.ObjectID, ref OrderRef) (*Customer, error) {
	update := bson.M{
		"$push": bson.M{"orders": ref},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.returnUpdated(ctx, active(id), update)
}

func (r *mongoRepository) SetOrderRefStatus(ctx context.Context, id, orderID primitive.ObjectID, status string) (*Customer, error) {
	filter := active(id)
	filter["orders"] = bson.M{"$elemMatch": bson.M{"orderId": orderID}}

	update := bson.M{
		"$set": bson.M{
			"orders.$.status": status,
			"updatedAt":       time.Now().UTC(),
		},
	}

	updated, err := r.returnUpdated(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrOrderRefNotFound
	}
	return updated, err
}

func (r *mongoRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("repository: failed to deactivate customer %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
