package worldstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeta(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx := context.Background()

	t.Run("unstamped world reads as not found", func(t *testing.T) {
		_, err := client.GetMeta(ctx)
		assert.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("init stamps metadata once", func(t *testing.T) {
		meta, err := client.InitMeta(ctx, "3.3.1")
		require.NoError(t, err)
		assert.NotEmpty(t, meta.WorldID)
		assert.Equal(t, "3.3.1", meta.SchemaVersion)
		assert.NotZero(t, meta.CreatedAtMs)

		retrieved, err := client.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, meta.WorldID, retrieved.WorldID)
		assert.Equal(t, "3.3.1", retrieved.SchemaVersion)
	})

	t.Run("second init fails", func(t *testing.T) {
		_, err := client.InitMeta(ctx, "3.3.1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("schema version advances without touching the world ID", func(t *testing.T) {
		before, err := client.GetMeta(ctx)
		require.NoError(t, err)

		require.NoError(t, client.SetSchemaVersion(ctx, "3.4.0"))

		after, err := client.GetMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.WorldID, after.WorldID)
		assert.Equal(t, "3.4.0", after.SchemaVersion)
	})
}
