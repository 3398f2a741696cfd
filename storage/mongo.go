package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/style-auditor/report"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink stores one document per run holding the structured report and
// the run manifest.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSink connects to uri and checks the connection.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (m *MongoSink) Name() string { return "mongo" }

func (m *MongoSink) Put(ctx context.Context, runID string, artifacts []Artifact) error {
	doc, err := runDocument(runID, artifacts, time.Now())
	if err != nil {
		return err
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}
	return nil
}

func (m *MongoSink) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// runDocument builds the stored document from the JSON artifacts.
func runDocument(runID string, artifacts []Artifact, now time.Time) (bson.M, error) {
	doc := bson.M{"run_id": runID, "created_at": now}
	for field, name := range map[string]string{
		"report":   report.StructuredName,
		"manifest": report.ManifestName,
	} {
		a, ok := find(artifacts, name)
		if !ok {
			return nil, fmt.Errorf("missing artifact %s", name)
		}
		var value bson.M
		if err := bson.UnmarshalExtJSON(a.Data, false, &value); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		doc[field] = value
	}
	return doc, nil
}
