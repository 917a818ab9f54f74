package mongodb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestjam/tinyurl/internal/domain"
)

const uri = "mongodb://localhost:27017"

func TestURLStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping long-running test.")
	}
	domain.URLStoreContract{
		NewURLStore: func() (domain.URLStore, func()) {
			t.Helper()
			ctx := context.Background()
			database := "tinyurl_test_" + uuid.NewString()

			store, err := New(ctx, uri, WithDatabase(database))
			if err != nil {
				t.Skip("Skipping test: unavailable database.")
			}

			return store, func() {
				require.NoError(t, store.collection.Database().Drop(ctx))
				require.NoError(t, store.Close(ctx))
			}
		},
	}.Test(t)
}

func TestNew(t *testing.T) {
	t.Run("invalid uri", func(t *testing.T) {
		_, err := New(context.Background(), "invalid://uri")

		assert.Error(t, err)
	})
}
