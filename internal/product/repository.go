package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "products"

var (
	ErrNotFound   = errors.New("product not found")
	ErrNameExists = errors.New("product with this name already exists")
)

type Repository interface {
	Create(ctx context.Context, product *Product) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	GetAll(ctx context.Context) ([]Product, error)
	ListPage(ctx context.Context, page, limit int64, filters ListFilters) ([]Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, properties bson.M) (*Product, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID) error
	AddQuantitySold(ctx context.Context, id primitive.ObjectID, quantity int) (*Product, error)
	CountAll(ctx context.Context) (int64, error)
	TopBestSellers(ctx context.Context, limit int64) ([]Product, error)
	ByBrandAndType(ctx context.Context, brand, productType string, limit int64) ([]Product, error)
	FindByAttributes(ctx context.Context, query LookupQuery) (*Product, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

func live(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "_destroy": false}
}

func (r *mongoRepository) Create(ctx context.Context, product *Product) (primitive.ObjectID, error) {
	product.Destroyed = false
	if product.ImportAt.IsZero() {
		product.ImportAt = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("repository: failed to insert product: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("repository: unexpected inserted id type %T", res.InsertedID)
	}
	product.ID = id

	return id, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	var product Product
	err := r.coll.FindOne(ctx, live(id)).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id.Hex(), err)
	}
	return &product, nil
}

func (r *mongoRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"name": name, "_destroy": false}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("repository: failed to check product name %q: %w", name, err)
	}
	return true, nil
}

func (r *mongoRepository) GetAll(ctx context.Context) ([]Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"_destroy": false})
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repository: failed to decode products: %w", err)
	}
	return products, nil
}

func csvOrValue(value string) any {
	if strings.Contains(value, ",") {
		return bson.M{"$in": strings.Split(value, ",")}
	}
	return value
}

func (r *mongoRepository) ListPage(ctx context.Context, page, limit int64, filters ListFilters) ([]Product, int64, error) {
	match := bson.M{"_destroy": false}

	if filters.Type != "" {
		match["type"] = csvOrValue(filters.Type)
	}
	if filters.Brand != "" {
		match["brand"] = csvOrValue(filters.Brand)
	}
	if filters.Color != "" {
		match["colors.color"] = csvOrValue(filters.Color)
	}
	if filters.Search != "" {
		match["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filters.Search), Options: "i"}
	}

	switch {
	case filters.Stock == "":
	case strings.Contains(filters.Stock, ","):
		// Both stock states requested cancels the filter out.
		match["stock"] = bson.M{"$gte": 0}
	case filters.Stock == "just in":
		match["stock"] = bson.M{"$gte": 1}
	default:
		match["stock"] = bson.M{"$lte": 0}
	}

	findOpts := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	switch filters.Sort {
	case "newest":
		findOpts.SetSort(bson.D{{Key: "importAt", Value: -1}})
	case "oldest":
		findOpts.SetSort(bson.D{{Key: "importAt", Value: 1}})
	case "low-high":
		findOpts.SetSort(bson.D{{Key: "price", Value: 1}})
	case "high-low":
		findOpts.SetSort(bson.D{{Key: "price", Value: -1}})
	}

	cursor, err := r.coll.Find(ctx, match, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products page: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to decode products page: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count products: %w", err)
	}

	return products, total, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, properties bson.M) (*Product, error) {
	delete(properties, "_id")
	properties["updateAt"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": properties}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update product %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

func (r *mongoRepository) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"_destroy": true}})
	if err != nil {
		return fmt.Errorf("repository: failed to soft delete product %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) AddQuantitySold(ctx context.Context, id primitive.ObjectID, quantity int) (*Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantitySold": quantity}}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to increment quantity sold for %s: %w", id.Hex(), err)
	}
	return &updated, nil
}

func (r *mongoRepository) CountAll(ctx context.Context) (int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count products: %w", err)
	}
	return total, nil
}

func (r *mongoRepository) TopBestSellers(ctx context.Context, limit int64) ([]Product, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "quantitySold", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"quantitySold": bson.M{"$exists": true}}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query best sellers: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repository: failed to decode best sellers: %w", err)
	}
	return products, nil
}

func (r *mongoRepository) ByBrandAndType(ctx context.Context, brand, productType string, limit int64) ([]Product, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "importAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"brand": brand, "type": productType}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by brand and type: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("repository: failed to decode products by brand and type: %w", err)
	}
	return products, nil
}

func (r *mongoRepository) FindByAttributes(ctx context.Context, query LookupQuery) (*Product, error) {
	filter := bson.M{}

	if query.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(query.Name), Options: "i"}
	}
	if query.Brand != "" {
		filter["brand"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.ToLower(query.Brand)) + "$", Options: "i"}
	}
	if query.Color != "" {
		filter["colors.color"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strings.ToLower(query.Color)) + "$", Options: "i"}
	}
	if query.Size != "" {
		size, err := strconv.ParseFloat(query.Size, 64)
		if err == nil {
			filter["colors.sizes.size"] = size
		}
	}

	var found Product
	err := r.coll.FindOne(ctx, filter).Decode(&found)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to look up product by attributes: %w", err)
	}
	return &found, nil
}
