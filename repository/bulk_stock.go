package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"supply-order-service/models"
	"supply-order-service/stock"
)

// BulkStockUpdater applies one order's worth of ledger operations as
// a single all-or-nothing unit. The optional fn runs inside the same
// transaction, so an order mutation and its stock effect commit or
// abort together; there is never an order marked cancelled with stock
// left unrestored, or the other way round.
type BulkStockUpdater interface {
	Run(ctx context.Context, ops []stock.Operation, fn func(ctx context.Context) error) error
}

// MongoBulkStockUpdater implements BulkStockUpdater with a mongo
// session transaction: snapshot reads, majority writes.
type MongoBulkStockUpdater struct {
	client   *mongo.Client
	products *mongo.Collection
}

func NewMongoBulkStockUpdater(client *mongo.Client, products *MongoProductRepository) *MongoBulkStockUpdater {
	return &MongoBulkStockUpdater{client: client, products: products.Collection()}
}

func (u *MongoBulkStockUpdater) Run(ctx context.Context, ops []stock.Operation, fn func(ctx context.Context) error) error {
	session, err := u.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, op := range ops {
			// Load inside the transaction so the insufficient-stock
			// check runs against the transaction-local quantity, not a
			// read that a concurrent order may have invalidated.
			var p models.Product
			ferr := u.products.FindOne(sc, bson.M{"_id": op.ProductID}).Decode(&p)
			if errors.Is(ferr, mongo.ErrNoDocuments) {
				return nil, fmt.Errorf("%w: product %s", ErrNotFound, op.ProductID.Hex())
			}
			if ferr != nil {
				return nil, fmt.Errorf("load product %s: %w", op.ProductID.Hex(), ferr)
			}

			if aerr := stock.Apply(&p, op); aerr != nil {
				return nil, aerr
			}

			if _, rerr := u.products.ReplaceOne(sc, bson.M{"_id": p.ID}, p); rerr != nil {
				return nil, fmt.Errorf("write product %s: %w", p.ID.Hex(), rerr)
			}
		}

		if fn != nil {
			if ferr := fn(sc); ferr != nil {
				return nil, ferr
			}
		}
		return nil, nil
	}, txnOpts)

	return err
}
