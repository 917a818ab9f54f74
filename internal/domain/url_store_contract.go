package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// URLStoreContract содержит набор тестов, которые должна проходить любая реализация URLStore.
type URLStoreContract struct {
	NewURLStore func() (URLStore, func())
}

// Test запускает набор тестов контракта.
func (c URLStoreContract) Test(t *testing.T) {
	t.Run("insert new mapping", func(t *testing.T) {
		mapping := URLMapping{
			ShortCode: "abc123",
			LongURL:   "http://example.com",
		}
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()

		err := sut.Insert(ctx, mapping)

		require.NoError(t, err)

		got, err := sut.FindByShortCode(ctx, mapping.ShortCode)

		require.NoError(t, err)
		assert.Equal(t, mapping, got)
	})

	t.Run("find mapping by long url", func(t *testing.T) {
		mapping := URLMapping{
			ShortCode: "abc123",
			LongURL:   "http://example.com",
		}
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		err := sut.Insert(ctx, mapping)
		require.NoError(t, err)

		got, err := sut.FindByLongURL(ctx, mapping.LongURL)

		require.NoError(t, err)
		assert.Equal(t, mapping, got)
	})

	t.Run("mapping not found by short code", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		_, err := sut.FindByShortCode(context.Background(), "123")

		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("mapping not found by long url", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		_, err := sut.FindByLongURL(context.Background(), "http://example.com")

		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("insert mapping with taken short code", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		err := sut.Insert(ctx, URLMapping{ShortCode: "abc123", LongURL: "http://example.com"})
		require.NoError(t, err)

		err = sut.Insert(ctx, URLMapping{ShortCode: "abc123", LongURL: "http://example.org"})

		assert.ErrorIs(t, err, ErrShortCodeExists)

		got, err := sut.FindByShortCode(ctx, "abc123")

		require.NoError(t, err)
		assert.Equal(t, "http://example.com", got.LongURL)
	})

	t.Run("get all mappings", func(t *testing.T) {
		mappings := []URLMapping{
			{ShortCode: "abc123", LongURL: "http://example.com"},
			{ShortCode: "def456", LongURL: "http://example.org"},
		}
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		for _, m := range mappings {
			require.NoError(t, sut.Insert(ctx, m))
		}

		got, err := sut.GetAll(ctx)

		require.NoError(t, err)
		assert.ElementsMatch(t, mappings, got)
	})

	t.Run("delete mappings", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		require.NoError(t, sut.Insert(ctx, URLMapping{ShortCode: "abc123", LongURL: "http://example.com"}))
		require.NoError(t, sut.Insert(ctx, URLMapping{ShortCode: "def456", LongURL: "http://example.org"}))

		err := sut.Delete(ctx, []string{"abc123", "unknown"})

		require.NoError(t, err)

		_, err = sut.FindByShortCode(ctx, "abc123")
		assert.ErrorIs(t, err, ErrMappingNotFound)
		_, err = sut.FindByLongURL(ctx, "http://example.com")
		assert.ErrorIs(t, err, ErrMappingNotFound)

		got, err := sut.FindByShortCode(ctx, "def456")
		require.NoError(t, err)
		assert.Equal(t, "http://example.org", got.LongURL)
	})

	t.Run("find long url after deleting one of its codes", func(t *testing.T) {
		const longURL = "http://example.com"
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)
		ctx := context.Background()
		require.NoError(t, sut.Insert(ctx, URLMapping{ShortCode: "abc123", LongURL: longURL}))
		require.NoError(t, sut.Insert(ctx, URLMapping{ShortCode: "def456", LongURL: longURL}))

		err := sut.Delete(ctx, []string{"abc123"})

		require.NoError(t, err)
		got, err := sut.FindByLongURL(ctx, longURL)
		require.NoError(t, err)
		assert.Equal(t, URLMapping{ShortCode: "def456", LongURL: longURL}, got)
	})

	t.Run("store is available", func(t *testing.T) {
		sut, tearDown := c.NewURLStore()
		t.Cleanup(tearDown)

		got := sut.IsAvailable(context.Background())
		assert.True(t, got)
	})
}
