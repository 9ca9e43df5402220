package emitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEmitter_OnEmit verifies basic registration and delivery.
func TestEmitter_OnEmit(t *testing.T) {
	e := New()
	var got []any
	e.On("data", func(args ...any) {
		got = append(got, args...)
	})

	delivered := e.Emit("data", "a", 1)
	assert.True(t, delivered)
	assert.Equal(t, []any{"a", 1}, got)
}

// TestEmitter_Emit_NoListeners verifies Emit reports undelivered events.
func TestEmitter_Emit_NoListeners(t *testing.T) {
	e := New()
	assert.False(t, e.Emit("nothing"))
}

// TestEmitter_Order verifies listeners fire in registration order.
func TestEmitter_Order(t *testing.T) {
	e := New()
	var order []int
	e.On("tick", func(...any) { order = append(order, 1) })
	e.On("tick", func(...any) { order = append(order, 2) })
	e.On("tick", func(...any) { order = append(order, 3) })

	e.Emit("tick")
	assert.Equal(t, []int{1, 2, 3}, order)
}

// TestEmitter_Off removes exactly the identified listener.
func TestEmitter_Off(t *testing.T) {
	e := New()
	var a, b int
	hA := e.On("tick", func(...any) { a++ })
	e.On("tick", func(...any) { b++ })

	e.Off("tick", hA)
	e.Emit("tick")

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, e.ListenerCount("tick"))
}

// TestEmitter_Off_UnknownHandle verifies unknown handles are ignored.
func TestEmitter_Off_UnknownHandle(t *testing.T) {
	e := New()
	e.On("tick", func(...any) {})
	e.Off("tick", Handle(9999))
	e.Off("other", Handle(1))
	assert.Equal(t, 1, e.ListenerCount("tick"))
}

// TestEmitter_Once verifies single delivery and self-removal.
func TestEmitter_Once(t *testing.T) {
	e := New()
	count := 0
	e.Once("tick", func(...any) { count++ })

	e.Emit("tick")
	e.Emit("tick")

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, e.ListenerCount("tick"))
}

// TestEmitter_Once_ReregisterInside verifies a once listener can
// re-register itself during delivery without firing twice.
func TestEmitter_Once_ReregisterInside(t *testing.T) {
	e := New()
	count := 0
	var register func()
	register = func() {
		e.Once("tick", func(...any) {
			count++
			register()
		})
	}
	register()

	e.Emit("tick")
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, e.ListenerCount("tick"))
}

// TestEmitter_RemoveDuringEmit verifies a listener removed by an
// earlier listener in the same delivery is skipped.
func TestEmitter_RemoveDuringEmit(t *testing.T) {
	e := New()
	var fired []string
	var hB Handle
	e.On("tick", func(...any) {
		fired = append(fired, "a")
		e.Off("tick", hB)
	})
	hB = e.On("tick", func(...any) {
		fired = append(fired, "b")
	})

	e.Emit("tick")
	assert.Equal(t, []string{"a"}, fired)
}

// TestEmitter_AddDuringEmit verifies listeners added during delivery
// do not fire for the in-flight event.
func TestEmitter_AddDuringEmit(t *testing.T) {
	e := New()
	var fired []string
	e.On("tick", func(...any) {
		fired = append(fired, "a")
		e.On("tick", func(...any) { fired = append(fired, "late") })
	})

	e.Emit("tick")
	assert.Equal(t, []string{"a"}, fired)

	e.Emit("tick")
	assert.Equal(t, []string{"a", "a", "late"}, fired)
}

// TestEmitter_RemoveAllListeners covers both the targeted and blanket forms.
func TestEmitter_RemoveAllListeners(t *testing.T) {
	e := New()
	e.On("a", func(...any) {})
	e.On("a", func(...any) {})
	e.On("b", func(...any) {})

	e.RemoveAllListeners("a")
	assert.Equal(t, 0, e.ListenerCount("a"))
	assert.Equal(t, 1, e.ListenerCount("b"))

	e.RemoveAllListeners()
	assert.Equal(t, 0, e.ListenerCount("b"))
}

// TestEmitter_NilListener_Panics verifies nil listeners are rejected.
func TestEmitter_NilListener_Panics(t *testing.T) {
	e := New()
	assert.PanicsWithValue(t, "emitter: listener cannot be nil", func() {
		e.On("tick", nil)
	})
	assert.PanicsWithValue(t, "emitter: listener cannot be nil", func() {
		e.Once("tick", nil)
	})
}
