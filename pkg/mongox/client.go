package mongox

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"

	"github.com/minsukang/accounts/pkg/logger"
)

// Client wraps mongo.Client with a bound database and logging
type Client struct {
	*mongo.Client
	database string
	logger   *logger.Logger
}

// NewClient creates a new Mongo client from URI and verifies connectivity
func NewClient(uri string, database string, connectTimeout time.Duration, log *logger.Logger) (*Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI cannot be empty")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database cannot be empty")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	client := &Client{
		Client:   mongoClient,
		database: database,
		logger:   log.WithComponent("mongox"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	client.logger.Info("Connected to Mongo",
		zap.String("database", database),
	)

	return client, nil
}

// DB returns the bound database handle
func (c *Client) DB() *mongo.Database {
	return c.Database(c.database)
}

// Collection returns a collection handle within the bound database
func (c *Client) Collection(name string) *mongo.Collection {
	return c.DB().Collection(name)
}

// HealthCheck verifies the server is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Disconnect(ctx); err != nil {
		c.logger.Error("Failed to disconnect from Mongo", zap.Error(err))
		return err
	}

	c.logger.Info("Mongo connection closed")
	return nil
}
