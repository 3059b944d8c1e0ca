package mongo

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"auction-house/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ErrNotInitialized is returned by Shutdown when no connection is open.
var ErrNotInitialized = errors.New("mongo client not initialized")

var (
	drv    driver = mongoDriver{}
	client *mongo.Client
	db     *mongo.Database
	mu     sync.Mutex
)

// Init opens the process-wide MongoDB connection. Once a connection is up,
// later calls return it unchanged. A failed attempt leaves nothing behind,
// so the caller may retry.
func Init(ctx context.Context, cfg config.Config, log *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if client != nil && db != nil {
		return client, db, nil
	}

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(10 * time.Second).
		SetAppName("auction-house")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := drv.Connect(ctx, opts)
	if err != nil {
		log.Error("failed to connect to mongo", "err", err)
		return nil, nil, err
	}

	if err := drv.Ping(ctx, cli); err != nil {
		log.Error("failed to ping mongo", "err", err)
		if derr := drv.Disconnect(ctx, cli); derr != nil {
			log.Warn("failed to release mongo client after ping failure", "err", derr)
		}
		return nil, nil, err
	}

	client = cli
	db = cli.Database(cfg.MongoDBName)

	log.Info("successfully connected to mongo", "db", cfg.MongoDBName)

	return client, db, nil
}

// Client returns the singleton MongoDB client instance.
func Client() *mongo.Client {
	mu.Lock()
	defer mu.Unlock()
	return client
}

// DB returns the singleton MongoDB database instance.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// Shutdown disconnects the singleton client. Calling it without an open
// connection returns ErrNotInitialized.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := drv.Disconnect(ctx, client)

	client = nil
	db = nil

	return err
}
