package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"supply-order-service/models"
)

var (
	// ErrStaleOrder means a compare-and-swap on (status, version) found
	// no match: a concurrent writer got there first.
	ErrStaleOrder = errors.New("order was modified concurrently")
	// ErrAlreadyAssigned is the expected outcome for the loser of a
	// return-claim race.
	ErrAlreadyAssigned = errors.New("return transporter already assigned")
)

// TransitionCommit carries everything one accepted transition writes.
type TransitionCommit struct {
	OrderID         primitive.ObjectID
	FromStatus      models.OrderStatus
	ToStatus        models.OrderStatus
	ExpectedVersion int64
	ActorRole       models.Role
	Reason          string
	TransporterID   *primitive.ObjectID
	TimestampField  string
	At              time.Time
}

// OrderListFilter scopes a paginated listing to one actor.
type OrderListFilter struct {
	WholesalerID  *primitive.ObjectID
	SupplierID    *primitive.ObjectID
	TransporterID *primitive.ObjectID
	Status        models.OrderStatus
	Page          int
	Limit         int
}

// OrderRepository is the data-access surface for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error)
	CommitTransition(ctx context.Context, c TransitionCommit) (*models.Order, error)
	ClaimReturn(ctx context.Context, orderID, transporterID primitive.ObjectID, at time.Time) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.PaymentStatus) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID, expectedStatus models.OrderStatus, expectedVersion int64) error
}

// MongoOrderRepository implements OrderRepository on a mongo
// collection.
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (r *MongoOrderRepository) Create(ctx context.Context, o *models.Order) error {
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &o, nil
}

func (r *MongoOrderRepository) List(ctx context.Context, f OrderListFilter) ([]models.Order, int64, error) {
	filter := bson.M{}
	if f.WholesalerID != nil {
		filter["wholesaler_id"] = *f.WholesalerID
	}
	if f.SupplierID != nil {
		filter["supplier_id"] = *f.SupplierID
	}
	if f.TransporterID != nil {
		// A transporter sees orders where it carries either leg.
		filter["$or"] = bson.A{
			bson.M{"transporter_id": *f.TransporterID},
			bson.M{"return_transporter_id": *f.TransporterID},
		}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	opts := options.Find().
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("decode orders: %w", err)
	}
	return orders, total, nil
}

// CommitTransition applies one accepted transition as a single
// conditional update. The filter pins the status and version the
// caller validated against, so a stale writer matches nothing and
// gets ErrStaleOrder instead of clobbering a concurrent change.
func (r *MongoOrderRepository) CommitTransition(ctx context.Context, c TransitionCommit) (*models.Order, error) {
	set := bson.M{
		"status":     c.ToStatus,
		"updated_at": c.At,
	}
	if c.TimestampField != "" {
		set[c.TimestampField] = c.At
	}
	if c.TransporterID != nil {
		set["transporter_id"] = *c.TransporterID
	}

	event := models.StatusEvent{
		Timestamp:  c.At,
		FromStatus: c.FromStatus,
		ToStatus:   c.ToStatus,
		ActorRole:  c.ActorRole,
		Reason:     c.Reason,
	}
	push := bson.M{"events": event}
	if c.Reason != "" {
		push["notes"] = models.FormatNote(c.At, c.Reason)
	}

	update := bson.M{
		"$set":  set,
		"$push": push,
		"$inc":  bson.M{"version": 1},
	}
	filter := bson.M{
		"_id":     c.OrderID,
		"status":  c.FromStatus,
		"version": c.ExpectedVersion,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStaleOrder
	}
	if err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	return &o, nil
}

// ClaimReturn assigns the return transporter first-acceptor-wins. The
// filter only matches while no return transporter is set, so exactly
// one of any number of concurrent claims succeeds.
func (r *MongoOrderRepository) ClaimReturn(ctx context.Context, orderID, transporterID primitive.ObjectID, at time.Time) (*models.Order, error) {
	filter := bson.M{
		"_id":                   orderID,
		"status":                models.StatusReturnRequested,
		"return_transporter_id": bson.M{"$exists": false},
	}
	event := models.StatusEvent{
		Timestamp:  at,
		FromStatus: models.StatusReturnRequested,
		ToStatus:   models.StatusReturnAccepted,
		ActorRole:  models.RoleTransporter,
	}
	update := bson.M{
		"$set": bson.M{
			"status":                models.StatusReturnAccepted,
			"return_transporter_id": transporterID,
			"return_accepted_at":    at,
			"updated_at":            at,
		},
		"$push": bson.M{"events": event},
		"$inc":  bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&o)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("claim return: %w", err)
	}

	// No match: tell the race loser apart from a plain miss.
	existing, ferr := r.FindByID(ctx, orderID)
	if ferr != nil {
		return nil, ferr
	}
	if existing.ReturnTransporterID != nil {
		return nil, ErrAlreadyAssigned
	}
	return nil, ErrStaleOrder
}

func (r *MongoOrderRepository) UpdatePaymentStatus(ctx context.Context, orderID primitive.ObjectID, status models.PaymentStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"payment_status": status,
		"updated_at":     time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": orderID}, update, opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	return &o, nil
}

// Delete removes an order only while it still carries the status and
// version the caller read. A transition landing in between leaves the
// filter unmatched and the order alive.
func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID, expectedStatus models.OrderStatus, expectedVersion int64) error {
	filter := bson.M{
		"_id":     id,
		"status":  expectedStatus,
		"version": expectedVersion,
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}

	// No match: tell a concurrent modification apart from a plain miss.
	if _, ferr := r.FindByID(ctx, id); ferr != nil {
		return ferr
	}
	return ErrStaleOrder
}
