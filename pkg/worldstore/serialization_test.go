package worldstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToEntitySkipsFlagFields(t *testing.T) {
	entity := &Entity{
		ID:   "2f1d4c1e-0000-4000-8000-000000000001",
		Type: "actor",
		Name: "Hash Subject",
		Data: map[string]any{"hp": float64(10)},
	}

	hash, err := EntityToHash(entity)
	require.NoError(t, err)

	// Simulate the flag bag fields that live alongside entity fields.
	stringHash := map[string]string{
		"flag:wardstone": `{"seen":true}`,
		"flag:other":     `{"x":1}`,
	}
	for k, v := range hash {
		switch value := v.(type) {
		case string:
			stringHash[k] = value
		case int64:
			stringHash[k] = "0"
		}
	}

	decoded, err := HashToEntity(stringHash)
	require.NoError(t, err)
	assert.Equal(t, entity.ID, decoded.ID)
	assert.Equal(t, entity.Data, decoded.Data)

	scopes := FlagScopesFromHash(stringHash)
	assert.ElementsMatch(t, []string{"wardstone", "other"}, scopes)
}

func TestDeepMerge(t *testing.T) {
	t.Run("nested maps merge recursively", func(t *testing.T) {
		dst := map[string]any{
			"a": map[string]any{"x": 1, "y": 2},
			"b": "keep",
		}
		DeepMerge(dst, map[string]any{
			"a": map[string]any{"y": 3, "z": 4},
		})

		assert.Equal(t, map[string]any{
			"a": map[string]any{"x": 1, "y": 3, "z": 4},
			"b": "keep",
		}, dst)
	})

	t.Run("non-map values replace wholesale", func(t *testing.T) {
		dst := map[string]any{"a": map[string]any{"x": 1}}
		DeepMerge(dst, map[string]any{"a": "scalar"})
		assert.Equal(t, map[string]any{"a": "scalar"}, dst)
	})

	t.Run("map replaces scalar", func(t *testing.T) {
		dst := map[string]any{"a": "scalar"}
		DeepMerge(dst, map[string]any{"a": map[string]any{"x": 1}})
		assert.Equal(t, map[string]any{"a": map[string]any{"x": 1}}, dst)
	})
}

func TestDeletePath(t *testing.T) {
	t.Run("deletes a leaf and prunes empty parents", func(t *testing.T) {
		bag := map[string]any{
			"a": map[string]any{
				"b": map[string]any{"c": 1},
			},
			"keep": true,
		}
		assert.True(t, deletePath(bag, "a.b.c"))
		assert.Equal(t, map[string]any{"keep": true}, bag)
	})

	t.Run("parent with siblings survives", func(t *testing.T) {
		bag := map[string]any{
			"a": map[string]any{"b": 1, "c": 2},
		}
		assert.True(t, deletePath(bag, "a.b"))
		assert.Equal(t, map[string]any{"a": map[string]any{"c": 2}}, bag)
	})

	t.Run("missing path reports false", func(t *testing.T) {
		bag := map[string]any{"a": 1}
		assert.False(t, deletePath(bag, "a.b.c"))
		assert.False(t, deletePath(bag, "x"))
		assert.Equal(t, map[string]any{"a": 1}, bag)
	})
}
