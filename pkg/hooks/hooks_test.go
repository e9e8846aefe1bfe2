package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOn(t *testing.T) {
	t.Run("handlers fire in registration order", func(t *testing.T) {
		d := NewDispatcher()
		var order []int

		d.On("wardstone.ready", func(args ...any) bool {
			order = append(order, 1)
			return true
		})
		d.On("wardstone.ready", func(args ...any) bool {
			order = append(order, 2)
			return true
		})

		d.CallAll("wardstone.ready")
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("off removes exactly one registration", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0
		handler := func(args ...any) bool {
			calls++
			return true
		}

		off := d.On("wardstone.ready", handler)
		d.On("wardstone.ready", handler)
		assert.Equal(t, 2, d.HandlerCount("wardstone.ready"))

		off()
		assert.Equal(t, 1, d.HandlerCount("wardstone.ready"))

		d.CallAll("wardstone.ready")
		assert.Equal(t, 1, calls)

		// Calling off again is a no-op.
		off()
		assert.Equal(t, 1, d.HandlerCount("wardstone.ready"))
	})
}

func TestCallAll(t *testing.T) {
	t.Run("no handlers returns true", func(t *testing.T) {
		d := NewDispatcher()
		assert.True(t, d.CallAll("wardstone.unheard"))
	})

	t.Run("args reach every handler", func(t *testing.T) {
		d := NewDispatcher()
		var got []any
		d.On("wardstone.updateActor", func(args ...any) bool {
			got = args
			return true
		})

		d.CallAll("wardstone.updateActor", "actor-1", map[string]any{"hp": 5})
		assert.Equal(t, []any{"actor-1", map[string]any{"hp": 5}}, got)
	})

	t.Run("veto does not stop later handlers", func(t *testing.T) {
		d := NewDispatcher()
		var order []string

		d.On("wardstone.preDelete", func(args ...any) bool {
			order = append(order, "veto")
			return false
		})
		d.On("wardstone.preDelete", func(args ...any) bool {
			order = append(order, "after")
			return true
		})

		ok := d.CallAll("wardstone.preDelete")
		assert.False(t, ok)
		assert.Equal(t, []string{"veto", "after"}, order)
	})

	t.Run("events are independent", func(t *testing.T) {
		d := NewDispatcher()
		fired := false
		d.On("wardstone.a", func(args ...any) bool {
			fired = true
			return true
		})

		d.CallAll("wardstone.b")
		assert.False(t, fired)
	})
}
