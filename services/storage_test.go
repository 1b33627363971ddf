package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	metadata := map[string]string{"case_number": "C-1", "created_by": "tester"}
	result, err := store.Upload(ctx, strings.NewReader("<xml/>"), "agency_a/Case/XML/2024-01-01/C-1.xml", "application/xml", 6, metadata)
	require.NoError(t, err)
	assert.Equal(t, "C-1.xml", result.FileName)
	assert.Equal(t, int64(6), result.FileSize)

	reader, contentType, err := store.Get(ctx, "agency_a/Case/XML/2024-01-01/C-1.xml")
	require.NoError(t, err)
	defer reader.Close()
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "<xml/>", string(data))
	assert.Equal(t, "application/xml", contentType)

	head, err := store.Head(ctx, "agency_a/Case/XML/2024-01-01/C-1.xml")
	require.NoError(t, err)
	assert.Equal(t, metadata, head)
}

func TestLocalStorageListSkipsSidecars(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{
		"agency_a/Case/XML/2024-01-01/C-1.xml",
		"agency_a/Case/XML/2024-01-02/C-2.xml",
		"agency_b/Case/XML/2024-01-01/C-9.xml",
	} {
		_, err := store.Upload(ctx, strings.NewReader("<xml/>"), key, "application/xml", 6, map[string]string{"k": "v"})
		require.NoError(t, err)
	}

	objects, err := store.List(ctx, CitationDocumentPrefix("agency_a"))
	require.NoError(t, err)
	require.Len(t, objects, 2)
	for _, obj := range objects {
		assert.NotContains(t, obj.Key, ".meta.json")
		assert.Contains(t, obj.Key, "agency_a/Case/XML/")
	}
}

func TestLocalStorageListEmptyPrefix(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	objects, err := store.List(context.Background(), CitationDocumentPrefix("agency_missing"))
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestLocalStorageDeleteRemovesSidecar(t *testing.T) {
	store := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	_, err := store.Upload(ctx, strings.NewReader("x"), "agency_a/Case/XML/2024-01-01/C-1.xml", "application/xml", 1, map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "agency_a/Case/XML/2024-01-01/C-1.xml"))

	objects, err := store.List(ctx, CitationDocumentPrefix("agency_a"))
	require.NoError(t, err)
	assert.Empty(t, objects)

	// Deleting a missing key is not an error
	assert.NoError(t, store.Delete(ctx, "agency_a/Case/XML/2024-01-01/C-1.xml"))
}

func TestCitationDocumentKey(t *testing.T) {
	createdOn := time.Date(2024, 5, 10, 16, 0, 0, 0, time.UTC)
	key := CitationDocumentKey("agency_a", "C-2024-0042", createdOn, ".xml")
	assert.Equal(t, "agency_a/Case/XML/2024-05-10/C-2024-0042.xml", key)
}
