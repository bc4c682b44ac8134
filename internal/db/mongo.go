// Package db opens the storage backends of the records service.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo dials uri and returns the named database together with a
// function that disconnects the client.
func ConnectMongo(ctx context.Context, uri, dbName string, selectTimeout time.Duration) (*mongo.Database, func(context.Context) error, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("farmdash")
	if selectTimeout > 0 {
		opts.SetServerSelectionTimeout(selectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(dbName), client.Disconnect, nil
}
