package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Document is a stored record with its store-assigned identity
type Document struct {
	ID     string
	Fields map[string]interface{}
}

type serverTimestamp struct{}

// ServerTimestamp, used as a field value, asks the backing store to write
// its own current time.
var ServerTimestamp interface{} = serverTimestamp{}

// DocumentStore is the hosted document database as the site uses it. Every
// call is a round trip: no cache, no retry, last write wins.
type DocumentStore interface {
	GetDocument(ctx context.Context, docPath string) (*Document, error)
	ListDocuments(ctx context.Context, collectionPath string) ([]Document, error)
	CreateDocument(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error)
	UpsertDocument(ctx context.Context, collectionPath, id string, fields map[string]interface{}, merge bool) error
	DeleteDocument(ctx context.Context, collectionPath, id string) error
	Close() error
}

// splitDocPath turns "a/b/c/d" into collection "a/b/c" and id "d"
func splitDocPath(docPath string) (string, string, error) {
	docPath = strings.Trim(docPath, "/")
	idx := strings.LastIndex(docPath, "/")
	if idx <= 0 || idx == len(docPath)-1 {
		return "", "", fmt.Errorf("invalid document path %q", docPath)
	}
	return docPath[:idx], docPath[idx+1:], nil
}
