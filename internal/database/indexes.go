package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureUserIndexes creates the unique email and username indexes. The
// pre-insert existence checks in the handlers are only a fast path; these
// indexes are the authoritative uniqueness guard.
func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "username", Value: 1}},
			Options: options.Index().
				SetName("username_unique").
				SetUnique(true),
		},
	}

	_, err := indexes.CreateMany(ctx, models)
	return err
}

// EnsureOrderIndexes creates the unique orderNumber index.
func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	numberIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderNumber", Value: 1}},
		Options: options.Index().
			SetName("orderNumber_unique").
			SetUnique(true),
	}

	_, err := indexes.CreateOne(ctx, numberIndex)
	return err
}
