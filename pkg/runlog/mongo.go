package runlog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultDatabase   = "sbhasm"
	DefaultCollection = "runs"
)

// MongoOptions configures a MongoSink.
type MongoOptions struct {
	URI        string
	Database   string // default: sbhasm
	Collection string // default: runs
	Timeout    time.Duration
}

// MongoSink inserts one document per run.
type MongoSink struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoSink connects to MongoDB and verifies the connection with a ping.
func NewMongoSink(ctx context.Context, opts MongoOptions) (*MongoSink, error) {
	if err := errs.ValidateURL(opts.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "ping mongodb")
	}

	return &MongoSink{
		client:  client,
		coll:    client.Database(opts.Database).Collection(opts.Collection),
		timeout: opts.Timeout,
	}, nil
}

// Write inserts rec.
func (s *MongoSink) Write(ctx context.Context, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "insert run record")
	}
	return nil
}

// Recent returns up to limit records for source, newest first.
// An empty source matches every run.
func (s *MongoSink) Recent(ctx context.Context, source string, limit int64) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{}
	if source != "" {
		filter["source"] = source
	}
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "query run records")
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "decode run records")
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Sink = (*MongoSink)(nil)
