package order_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ducnv-dev/shoestore-backend/internal/order"
)

// Integration tests against a real mongod. They only run when
// MONGODB_TEST_URI is set, e.g.
//
//	MONGODB_TEST_URI=mongodb://localhost:27017 go test ./internal/order/
var testDB *mongo.Database

func TestMain(m *testing.M) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("failed to connect to test mongod: %v", err)
	}
	testDB = client.Database("shoestore_test")

	exitCode := m.Run()

	_ = client.Disconnect(context.Background())
	os.Exit(exitCode)
}

func setupRepo(t *testing.T) order.Repository {
	if testDB == nil {
		t.Skip("MONGODB_TEST_URI is not set")
	}

	coll := testDB.Collection("orders")
	if _, err := coll.DeleteMany(context.Background(), bson.M{}); err != nil {
		t.Fatalf("failed to clear orders collection: %v", err)
	}
	t.Cleanup(func() {
		_, _ = coll.DeleteMany(context.Background(), bson.M{})
	})

	return order.NewMongoRepository(testDB)
}

func blueSneaker() order.LineItem {
	return order.LineItem{
		ProductID: primitive.NewObjectID(),
		Color:     "blue",
		Size:      "42",
		Quantity:  2,
		Price:     99.5,
		Name:      "Air Zoom Pegasus",
	}
}

func refOf(item order.LineItem) order.ItemRef {
	return order.ItemRef{ProductID: item.ProductID.Hex(), Color: item.Color, Size: item.Size}
}

func TestMongoRepository_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	item := blueSneaker()
	id, err := repo.Create(ctx, &order.Order{Items: []order.LineItem{item}, TotalPrice: 199})
	require.NoError(t, err)
	require.False(t, id.IsZero())

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCart, got.Status, "a new order starts as a cart")
	assert.Nil(t, got.CreatedAt, "createdAt is only stamped at checkout")
	require.Len(t, got.Items, 1)
	assert.Equal(t, item.ProductID, got.Items[0].ProductID)
	assert.Equal(t, 199.0, got.TotalPrice)
}

func TestMongoRepository_IncrementItemQuantity(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	item := blueSneaker()
	id, err := repo.Create(ctx, &order.Order{Items: []order.LineItem{item}})
	require.NoError(t, err)

	updated, err := repo.IncrementItemQuantity(ctx, id, refOf(item), 1)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 3, updated.Items[0].Quantity)

	// A ref that differs in any key component addresses a different item.
	otherSize := refOf(item)
	otherSize.Size = "43"
	_, err = repo.IncrementItemQuantity(ctx, id, otherSize, 1)
	assert.ErrorIs(t, err, order.ErrItemNotFound)

	_, err = repo.IncrementItemQuantity(ctx, primitive.NewObjectID(), refOf(item), 1)
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestMongoRepository_RemoveZeroQuantityItems(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	kept := blueSneaker()
	drained := blueSneaker()
	drained.Color = "red"
	drained.Quantity = 0

	id, err := repo.Create(ctx, &order.Order{Items: []order.LineItem{kept, drained}})
	require.NoError(t, err)

	updated, err := repo.RemoveZeroQuantityItems(ctx, id)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, kept.Color, updated.Items[0].Color)
}

func TestMongoRepository_SoftDeleteHidesOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &order.Order{})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(ctx, id))

	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, order.ErrNotFound)

	// Repeating the delete still matches the document.
	assert.NoError(t, repo.SoftDelete(ctx, id))
}

func TestMongoRepository_ListPageExcludesCarts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	placedAt := time.Now().UTC()

	cartID, err := repo.Create(ctx, &order.Order{})
	require.NoError(t, err)

	pendingID, err := repo.Create(ctx, &order.Order{Items: []order.LineItem{blueSneaker()}})
	require.NoError(t, err)
	_, err = repo.SetCheckout(ctx, pendingID, 199, "cod", placedAt)
	require.NoError(t, err)

	orders, total, err := repo.ListPage(ctx, 1, 10, order.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, pendingID, orders[0].ID)
	assert.NotEqual(t, cartID, orders[0].ID)
	assert.Equal(t, order.StatusPending, orders[0].Status)
	require.NotNil(t, orders[0].CreatedAt)
	assert.WithinDuration(t, placedAt, *orders[0].CreatedAt, time.Second)
}

func TestMongoRepository_ListPageSearch(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, &order.Order{})
	require.NoError(t, err)
	_, err = repo.SetShippingInfo(ctx, first, order.ShippingInfoInput{
		Name: "Nguyen Van A", Phone: "0901234567", Address: "12 Tran Hung Dao, Ha Noi",
	})
	require.NoError(t, err)
	_, err = repo.SetCheckout(ctx, first, 100, "cod", time.Now().UTC())
	require.NoError(t, err)

	second, err := repo.Create(ctx, &order.Order{})
	require.NoError(t, err)
	_, err = repo.SetShippingInfo(ctx, second, order.ShippingInfoInput{
		Name: "Tran Thi B", Phone: "0907654321", Address: "34 Le Loi, Da Nang",
	})
	require.NoError(t, err)
	_, err = repo.SetCheckout(ctx, second, 200, "cod", time.Now().UTC())
	require.NoError(t, err)

	orders, total, err := repo.ListPage(ctx, 1, 10, order.ListOptions{Search: "ha noi"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, first, orders[0].ID)
}
