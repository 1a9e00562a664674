package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Users        *mongo.Collection
	Providers    *mongo.Collection
	Services     *mongo.Collection
	Appointments *mongo.Collection
}

// Connect opens the process-wide client. The caller owns it and must
// Disconnect at shutdown.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	// Embedded documents decode to bson.M so opaque values (provider
	// availability) serialize back to JSON as objects.
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Users:        db.Collection("users"),
		Providers:    db.Collection("providers"),
		Services:     db.Collection("services"),
		Appointments: db.Collection("appointments"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cols.Users.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "authProvider", Value: 1}, {Key: "authId", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Providers.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	// No uniqueness on slots: overlapping appointments are allowed.
	_, err = cols.Appointments.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "startAt", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	return nil
}
