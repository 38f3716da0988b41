package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"supply-order-service/models"
)

// ErrNotFound covers any document the caller is not allowed to see as
// well as documents that do not exist; the two are indistinguishable
// on the wire.
var ErrNotFound = errors.New("record not found")

// ProductRepository is the data-access surface for supplier products.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindBySupplier(ctx context.Context, supplierID primitive.ObjectID, page, limit int) ([]models.Product, int64, error)
	FindLowStock(ctx context.Context, supplierID primitive.ObjectID) ([]models.Product, error)
	Replace(ctx context.Context, p *models.Product) error
}

// MongoProductRepository implements ProductRepository on a mongo
// collection.
type MongoProductRepository struct {
	col *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection("products")}
}

// Collection exposes the underlying collection for the bulk stock
// updater, which must read and write products inside its own
// transaction scope.
func (r *MongoProductRepository) Collection() *mongo.Collection { return r.col }

func (r *MongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *MongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *MongoProductRepository) FindBySupplier(ctx context.Context, supplierID primitive.ObjectID, page, limit int) ([]models.Product, int64, error) {
	filter := bson.M{"supplier_id": supplierID}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}
	return products, total, nil
}

func (r *MongoProductRepository) FindLowStock(ctx context.Context, supplierID primitive.ObjectID) ([]models.Product, error) {
	cur, err := r.col.Find(ctx, bson.M{"supplier_id": supplierID, "low_stock_alert": true})
	if err != nil {
		return nil, fmt.Errorf("find low stock products: %w", err)
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Replace persists a fully-mutated product document. The quantity and
// the derived low-stock flag travel together, so a single replace
// keeps them consistent.
func (r *MongoProductRepository) Replace(ctx context.Context, p *models.Product) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("replace product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
