package repositories

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFirestoreGetErr(t *testing.T) {
	err := firestoreGetErr("portfolio/about", status.Error(codes.NotFound, "no such document"))
	assert.ErrorIs(t, err, ErrNotFound)

	denied := status.Error(codes.PermissionDenied, "denied")
	err = firestoreGetErr("portfolio/about", denied)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "portfolio/about")
}

func TestToFirestoreServerTimestamp(t *testing.T) {
	out := toFirestore(map[string]interface{}{
		"name":   "Ada",
		"sentAt": ServerTimestamp,
	})
	assert.Equal(t, "Ada", out["name"])
	assert.Equal(t, firestore.ServerTimestamp, out["sentAt"])
}

func TestFirestoreStoreRejectsBadPaths(t *testing.T) {
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, "test-project", option.WithoutAuthentication())
	require.NoError(t, err)
	store := &FirestoreStore{client: client}
	defer store.Close()

	_, err = store.GetDocument(ctx, "portfolio")
	assert.ErrorContains(t, err, "invalid document path")

	_, err = store.ListDocuments(ctx, "portfolio/about")
	assert.ErrorContains(t, err, "invalid collection path")

	_, err = store.CreateDocument(ctx, "portfolio/about", map[string]interface{}{"x": 1})
	assert.ErrorContains(t, err, "invalid collection path")

	err = store.DeleteDocument(ctx, "portfolio/about", "x")
	assert.ErrorContains(t, err, "invalid collection path")
}
