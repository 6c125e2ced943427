package repositories

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore talks to Cloud Firestore through the Firebase Admin app
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore opens a Firestore client from an initialized Firebase app
func NewFirestoreStore(ctx context.Context, app *firebase.App) (*FirestoreStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) GetDocument(ctx context.Context, docPath string) (*Document, error) {
	ref := s.client.Doc(strings.Trim(docPath, "/"))
	if ref == nil {
		return nil, fmt.Errorf("invalid document path %q", docPath)
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, firestoreGetErr(docPath, err)
	}
	return &Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

func (s *FirestoreStore) ListDocuments(ctx context.Context, collectionPath string) ([]Document, error) {
	coll := s.client.Collection(strings.Trim(collectionPath, "/"))
	if coll == nil {
		return nil, fmt.Errorf("invalid collection path %q", collectionPath)
	}

	snaps, err := coll.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collectionPath, err)
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) CreateDocument(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	coll := s.client.Collection(strings.Trim(collectionPath, "/"))
	if coll == nil {
		return "", fmt.Errorf("invalid collection path %q", collectionPath)
	}

	ref, _, err := coll.Add(ctx, toFirestore(fields))
	if err != nil {
		return "", fmt.Errorf("creating in %s: %w", collectionPath, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) UpsertDocument(ctx context.Context, collectionPath, id string, fields map[string]interface{}, merge bool) error {
	coll := s.client.Collection(strings.Trim(collectionPath, "/"))
	if coll == nil {
		return fmt.Errorf("invalid collection path %q", collectionPath)
	}

	var err error
	if merge {
		_, err = coll.Doc(id).Set(ctx, toFirestore(fields), firestore.MergeAll)
	} else {
		_, err = coll.Doc(id).Set(ctx, toFirestore(fields))
	}
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", collectionPath, id, err)
	}
	return nil
}

func (s *FirestoreStore) DeleteDocument(ctx context.Context, collectionPath, id string) error {
	coll := s.client.Collection(strings.Trim(collectionPath, "/"))
	if coll == nil {
		return fmt.Errorf("invalid collection path %q", collectionPath)
	}

	if _, err := coll.Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collectionPath, id, err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// firestoreGetErr maps a missing document onto ErrNotFound
func firestoreGetErr(docPath string, err error) error {
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return fmt.Errorf("getting %s: %w", docPath, err)
}

func toFirestore(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			v = firestore.ServerTimestamp
		}
		out[k] = v
	}
	return out
}
