package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoBackend struct {
	coll *mongo.Collection
	// mu serializes Update within this process only.
	mu  sync.Mutex
	log *logrus.Logger
}

func NewMongoBackend(db *mongo.Database, logger *logrus.Logger) Backend {
	logger.Infof("Storage: mongo backend ready (collection %s)", TableName)
	return &mongoBackend{
		coll: db.Collection(TableName),
		log:  logger,
	}
}

func (m *mongoBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	var doc mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		m.log.Errorf("Storage: failed to read key %s: %v", key, err)
		return nil, false, fmt.Errorf("could not read storage key: %w", err)
	}
	return doc.Value, true, nil
}

func (m *mongoBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := m.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		m.log.Errorf("Storage: failed to write key %s: %v", key, err)
		return fmt.Errorf("could not write storage key: %w", err)
	}
	return nil
}

func (m *mongoBackend) Remove(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		m.log.Errorf("Storage: failed to delete key %s: %v", key, err)
		return fmt.Errorf("could not delete storage key: %w", err)
	}
	return nil
}

// Update is atomic against other callers in this process. Writers in other
// processes race with last write wins.
func (m *mongoBackend) Update(ctx context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, found, err := m.Get(ctx, key)
	if err != nil {
		return err
	}
	next, remove, err := fn(current, found)
	if err != nil {
		return err
	}
	if remove {
		return m.Remove(ctx, key)
	}
	return m.Set(ctx, key, next)
}
