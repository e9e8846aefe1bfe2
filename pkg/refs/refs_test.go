package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embermoor/wardstone/pkg/identity"
)

func newTestRewriter(t *testing.T, roots ...string) *Rewriter {
	t.Helper()
	id, err := identity.NewResolver("wardstone", []string{"gravemark"})
	require.NoError(t, err)
	return NewRewriter(id, roots...)
}

func TestRewriteString(t *testing.T) {
	rw := newTestRewriter(t)

	t.Run("rewrites legacy references", func(t *testing.T) {
		out, ok := rw.RewriteString("Catalog.gravemark.monsters.goblin")
		assert.True(t, ok)
		assert.Equal(t, "Catalog.wardstone.monsters.goblin", out)
	})

	t.Run("canonical references pass through", func(t *testing.T) {
		out, ok := rw.RewriteString("Catalog.wardstone.monsters.goblin")
		assert.False(t, ok)
		assert.Equal(t, "Catalog.wardstone.monsters.goblin", out)
	})

	t.Run("unrelated namespaces pass through", func(t *testing.T) {
		out, ok := rw.RewriteString("Catalog.core.conditions.prone")
		assert.False(t, ok)
		assert.Equal(t, "Catalog.core.conditions.prone", out)
	})

	t.Run("non-reference strings pass through", func(t *testing.T) {
		for _, s := range []string{
			"",
			"gravemark",
			"gravemark.monsters.goblin",
			"the gravemark is broken",
			"Catalog.gravemark",
			"Catalog.gravemark.",
		} {
			out, ok := rw.RewriteString(s)
			assert.False(t, ok, "string %q should not be rewritten", s)
			assert.Equal(t, s, out)
		}
	})

	t.Run("additional roots are recognized", func(t *testing.T) {
		rw := newTestRewriter(t, "Macro")

		out, ok := rw.RewriteString("Macro.gravemark.attack")
		assert.True(t, ok)
		assert.Equal(t, "Macro.wardstone.attack", out)

		// Undeclared roots stay unrecognized.
		out, ok = rw.RewriteString("Playlist.gravemark.battle")
		assert.False(t, ok)
		assert.Equal(t, "Playlist.gravemark.battle", out)
	})
}

func TestRewriteTree(t *testing.T) {
	rw := newTestRewriter(t)

	t.Run("rewrites nested strings and counts them", func(t *testing.T) {
		tree := map[string]any{
			"weapon": "Catalog.gravemark.items.longsword",
			"details": map[string]any{
				"source": "Catalog.gravemark.books.core",
				"note":   "handwritten",
			},
			"loot": []any{
				"Catalog.gravemark.items.potion",
				"Catalog.core.items.torch",
				float64(3),
			},
		}

		out, count := rw.RewriteTree(tree)
		assert.Equal(t, 3, count)
		assert.Equal(t, map[string]any{
			"weapon": "Catalog.wardstone.items.longsword",
			"details": map[string]any{
				"source": "Catalog.wardstone.books.core",
				"note":   "handwritten",
			},
			"loot": []any{
				"Catalog.wardstone.items.potion",
				"Catalog.core.items.torch",
				float64(3),
			},
		}, out)
	})

	t.Run("tree with nothing to rewrite reports zero", func(t *testing.T) {
		tree := map[string]any{"hp": float64(10), "name": "Goblin"}
		out, count := rw.RewriteTree(tree)
		assert.Equal(t, 0, count)
		assert.Equal(t, tree, out)
	})
}

func TestNodeRoundTrip(t *testing.T) {
	original := map[string]any{
		"s": "text",
		"n": float64(1.5),
		"b": true,
		"m": map[string]any{"nested": nil},
		"l": []any{"a", float64(2)},
	}

	assert.Equal(t, original, ToGo(FromGo(original)))
}
