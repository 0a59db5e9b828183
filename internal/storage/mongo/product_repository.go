package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/titan-coffee/internal/domain"
)

type productRepository struct {
	store *Store
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return domain.Product{}, err
	}

	doc := toProductDocument(product)
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return domain.Product{}, r.store.translate("insert product", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, r.store.translate("find products", err)
	}

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, r.store.translate("decode products", err)
	}

	result := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (domain.Product, error) {
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return domain.Product{}, err
	}

	var doc productDocument
	if err := coll.FindOne(ctx, bson.M{"productCode": code}).Decode(&doc); err != nil {
		return domain.Product{}, r.store.translate("find product", err)
	}
	return doc.toDomain(), nil
}

func (r *productRepository) Update(ctx context.Context, id string, upd domain.ProductUpdate, updatedAt time.Time) (domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Product{}, err
	}
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return domain.Product{}, err
	}

	set := bson.M{"$set": bson.M{
		"name":      upd.Name,
		"price":     upd.Price,
		"category":  string(upd.Category),
		"updatedAt": updatedAt.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	if err := coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, set, opts).Decode(&doc); err != nil {
		return domain.Product{}, r.store.translate("update product", err)
	}
	return doc.toDomain(), nil
}

func (r *productRepository) Delete(ctx context.Context, id string) (domain.Product, error) {
	oid, err := objectID(id)
	if err != nil {
		return domain.Product{}, err
	}
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return domain.Product{}, err
	}

	var doc productDocument
	if err := coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return domain.Product{}, r.store.translate("delete product", err)
	}
	return doc.toDomain(), nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	coll, err := r.store.collection(productsCollection)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, r.store.translate("count products", err)
	}
	return int(n), nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
