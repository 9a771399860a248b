package config

import (
	"context"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const databaseName = "jan_samadhan"

type MongoDBConfig struct {
	URI string
}

func NewMongoDBConfig(logger *zap.Logger) *MongoDBConfig {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		logger.Fatal("MONGO_URI not set")
	}
	return &MongoDBConfig{URI: uri}
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, config *MongoDBConfig, logger *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(config.URI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	logger.Info("Connected to MongoDB", zap.String("database", databaseName))

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			logger.Info("Closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	db := client.Database(databaseName)
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

// EnsureIndexes creates the unique indexes the data model relies on:
// department name and email on departments, the public complaint id on
// complaints. MongoDB enforces the uniqueness from then on.
func EnsureIndexes(db *mongo.Database, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []struct {
		collection string
		key        string
	}{
		{"departments", "dept_name"},
		{"departments", "email"},
		{"complaints", "complaint_id"},
	}

	for _, idx := range indexes {
		model := mongo.IndexModel{
			Keys:    bson.M{idx.key: 1},
			Options: options.Index().SetUnique(true),
		}
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, model); err != nil {
			logger.Error("Failed to create unique index",
				zap.String("collection", idx.collection),
				zap.String("key", idx.key),
				zap.Error(err))
			return err
		}
	}

	logger.Info("Unique indexes ensured")
	return nil
}
