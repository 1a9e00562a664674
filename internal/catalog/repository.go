package catalog

import (
	"context"

	"booking-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository stores one kind of catalog record keyed by hex id.
type Repository[T any] interface {
	Create(ctx context.Context, item T) error
	FindByID(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id string, set bson.M) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type (
	ProviderRepository = Repository[models.Provider]
	ServiceRepository  = Repository[models.Service]
)

type MongoRepository[T any] struct {
	col *mongo.Collection
}

func NewProviderRepository(col *mongo.Collection) *MongoRepository[models.Provider] {
	return &MongoRepository[models.Provider]{col: col}
}

func NewServiceRepository(col *mongo.Collection) *MongoRepository[models.Service] {
	return &MongoRepository[models.Service]{col: col}
}

func (r *MongoRepository[T]) Create(ctx context.Context, item T) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var item T
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

func (r *MongoRepository[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoRepository[T]) Update(ctx context.Context, id string, set bson.M) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated T
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

func (r *MongoRepository[T]) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
