package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoragePutPresignDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	_, err := s.GeneratePresignedDownloadURL(ctx, "exports/t/1.json", 0)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.PutObject(ctx, "exports/t/1.json", "application/json", strings.NewReader(`{"a":1}`)))
	obj, ok := s.Object("exports/t/1.json")
	require.True(t, ok)
	assert.Equal(t, "application/json", obj.ContentType)
	assert.JSONEq(t, `{"a":1}`, string(obj.Body))

	u, err := s.GeneratePresignedDownloadURL(ctx, "exports/t/1.json", 0)
	require.NoError(t, err)
	assert.Equal(t, "memory:///exports/t/1.json?expires=15m0s", u)

	require.NoError(t, s.DeleteObject(ctx, "exports/t/1.json"))
	_, ok = s.Object("exports/t/1.json")
	assert.False(t, ok)
}
