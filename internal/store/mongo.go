package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"cvforge/internal/errors"
	"cvforge/internal/identity"
	"cvforge/internal/types"
)

const connectTimeout = 5 * time.Second

// profileDocument is the stored shape: the profile wrapped with the
// identity subject as _id and bookkeeping fields.
type profileDocument struct {
	ID        string        `bson:"_id"`
	Email     string        `bson:"email,omitempty"`
	Name      string        `bson:"name,omitempty"`
	Profile   types.Profile `bson:"profile"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

// MongoStore implements DocumentStore on a MongoDB collection keyed by
// identity subject.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *errors.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection with a
// bounded ping before returning the store.
func NewMongoStore(ctx context.Context, uri, database, collection string, logger *errors.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStoreUnavailable,
			"failed to create MongoDB client", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.NewStorageError(errors.ErrCodeStoreUnavailable,
			"failed to reach MongoDB", err).WithContext("database", database)
	}

	logger.Info("Connected to MongoDB", "database", database, "collection", collection)

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

// Save upserts the full document for the identity.
func (s *MongoStore) Save(ctx context.Context, id identity.Identity, p types.Profile) error {
	doc := profileDocument{
		ID:        id.Subject,
		Email:     id.Email,
		Name:      id.Name,
		Profile:   p,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": id.Subject}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.NewStorageError(errors.ErrCodeSaveFailed,
			"failed to save profile", err).WithContext("subject", id.Subject)
	}

	s.logger.Debug("Profile saved", "subject", id.Subject)
	return nil
}

// Load fetches the document for the identity, (nil, nil) when absent.
func (s *MongoStore) Load(ctx context.Context, id identity.Identity) (*types.Profile, error) {
	var doc profileDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id.Subject}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeLoadFailed,
			"failed to load profile", err).WithContext("subject", id.Subject)
	}

	doc.Profile.EnsureKeys()
	return &doc.Profile, nil
}

// Ping verifies the MongoDB connection is still alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return errors.NewStorageError(errors.ErrCodeStoreUnavailable,
			"MongoDB is unreachable", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.NewStorageError(errors.ErrCodeStoreUnavailable,
			"failed to disconnect from MongoDB", err)
	}
	return nil
}
