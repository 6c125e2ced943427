package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps collection paths onto MongoDB collections: "a/b/c" is
// stored in collection "a.b.c" and documents use string _id values.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore wraps a connected client
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}
}

func (s *MongoStore) collection(path string) *mongo.Collection {
	return s.db.Collection(strings.ReplaceAll(strings.Trim(path, "/"), "/", "."))
}

func (s *MongoStore) GetDocument(ctx context.Context, docPath string) (*Document, error) {
	collPath, id, err := splitDocPath(docPath)
	if err != nil {
		return nil, err
	}

	var raw bson.M
	err = s.collection(collPath).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", docPath, err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) ListDocuments(ctx context.Context, collectionPath string) ([]Document, error) {
	cursor, err := s.collection(collectionPath).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collectionPath, err)
	}
	defer cursor.Close(ctx)

	docs := []Document{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", collectionPath, err)
		}
		docs = append(docs, *fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", collectionPath, err)
	}
	return docs, nil
}

func (s *MongoStore) CreateDocument(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	doc := toBSON(fields)
	doc["_id"] = id

	if _, err := s.collection(collectionPath).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("creating in %s: %w", collectionPath, err)
	}
	return id, nil
}

func (s *MongoStore) UpsertDocument(ctx context.Context, collectionPath, id string, fields map[string]interface{}, merge bool) error {
	coll := s.collection(collectionPath)
	filter := bson.M{"_id": id}

	var err error
	if merge {
		_, err = coll.UpdateOne(ctx, filter, bson.M{"$set": toBSON(fields)}, options.Update().SetUpsert(true))
	} else {
		_, err = coll.ReplaceOne(ctx, filter, toBSON(fields), options.Replace().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collectionPath, id, err)
	}
	return nil
}

func (s *MongoStore) DeleteDocument(ctx context.Context, collectionPath, id string) error {
	if _, err := s.collection(collectionPath).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collectionPath, id, err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toBSON(fields map[string]interface{}) bson.M {
	out := bson.M{}
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			v = time.Now().UTC()
		}
		out[k] = v
	}
	return out
}

func fromBSON(raw bson.M) *Document {
	doc := &Document{Fields: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = fmt.Sprint(v)
			continue
		}
		doc.Fields[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = fromBSONValue(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case bson.M:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = fromBSONValue(item)
		}
		return out
	default:
		return val
	}
}
