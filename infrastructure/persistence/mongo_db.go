package persistence

import (
	"context"
	"fmt"
	"time"

	"token-platform/infrastructure/configuration"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NewMongoDB connects to the payout archive. Callers treat a failure as
// "archive disabled" rather than fatal.
func NewMongoDB(ctx context.Context) (*mongo.Client, error) {
	cfg := configuration.C.Database.Mongo
	if cfg.Host == "" {
		return nil, fmt.Errorf("mongo host not configured")
	}
	port := cfg.Port
	if port == "" {
		port = "27017"
	}
	uri := fmt.Sprintf("mongodb://%s:%s", cfg.Host, port)
	opts := options.Client().ApplyURI(uri).SetConnectTimeout(5 * time.Second)
	if cfg.User != "" {
		opts.SetAuth(options.Credential{Username: cfg.User, Password: cfg.Password})
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
