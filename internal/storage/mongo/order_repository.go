package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

type orderRepository struct {
	store *Store
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	coll, err := r.store.collection(ordersCollection)
	if err != nil {
		return domain.Order{}, err
	}

	doc := toOrderDocument(order)
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Order{}, r.store.translate("insert order", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	coll, err := r.store.collection(ordersCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, r.store.translate("find orders", err)
	}

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, r.store.translate("decode orders", err)
	}

	result := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Order{}, err
	}
	coll, err := r.store.collection(ordersCollection)
	if err != nil {
		return domain.Order{}, err
	}

	var doc orderDocument
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Order{}, r.store.translate("find order", err)
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) Update(ctx context.Context, id string, upd domain.OrderUpdate, updatedAt time.Time) (domain.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Order{}, err
	}
	coll, err := r.store.collection(ordersCollection)
	if err != nil {
		return domain.Order{}, err
	}

	set := bson.M{"$set": bson.M{
		"size":      string(upd.Size),
		"quantity":  upd.Quantity,
		"updatedAt": updatedAt.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDocument
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, set, opts).Decode(&doc); err != nil {
		return domain.Order{}, r.store.translate("update order", err)
	}
	return doc.toDomain(), nil
}

func (r *orderRepository) Delete(ctx context.Context, id string) (domain.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Order{}, err
	}
	coll, err := r.store.collection(ordersCollection)
	if err != nil {
		return domain.Order{}, err
	}

	var doc orderDocument
	if err := coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Order{}, r.store.translate("delete order", err)
	}
	return doc.toDomain(), nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
