// Package emitter provides the named-event listener registry used by
// pipevine stages.
//
// Delivery is synchronous: Emit invokes every listener on the calling
// goroutine before returning. This is deliberate - the pipeline model
// is a single cooperative execution context, and asynchronous delivery
// would reorder readable/drain/end signals relative to the data they
// describe.
//
// Go functions are not comparable, so listeners cannot be removed by
// identity the way they are in callback-registry designs elsewhere.
// On and Once instead return an opaque Handle that Off accepts.
package emitter

// Listener is the signature for all event listeners.
// The args are whatever the emitting side passed to Emit.
type Listener func(args ...any)

// Handle identifies a registered listener for removal.
// The zero Handle is never issued and is always safe to pass to Off.
type Handle uint64

// Emitter dispatches named events to registered listeners.
//
// Emitter is NOT safe for concurrent use. Stages and the pipelines
// that contain them form a single-goroutine domain; callers needing
// cross-goroutine delivery must serialize externally.
type Emitter struct {
	next      Handle
	listeners map[string][]entry
}

type entry struct {
	handle Handle
	fn     Listener
	once   bool
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]entry)}
}

// On registers fn for the named event and returns its removal handle.
// Listeners fire in registration order.
//
// Panics if fn is nil.
func (e *Emitter) On(event string, fn Listener) Handle {
	return e.add(event, fn, false)
}

// Once registers fn for a single delivery. The listener is removed
// before it is invoked, so re-registering from inside fn is safe.
func (e *Emitter) Once(event string, fn Listener) Handle {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event string, fn Listener, once bool) Handle {
	if fn == nil {
		panic("emitter: listener cannot be nil")
	}
	e.next++
	e.listeners[event] = append(e.listeners[event], entry{handle: e.next, fn: fn, once: once})
	return e.next
}

// Off removes the listener registered under h for the named event.
// Unknown handles and events are ignored.
func (e *Emitter) Off(event string, h Handle) {
	ents, ok := e.listeners[event]
	if !ok {
		return
	}
	for i, ent := range ents {
		if ent.handle == h {
			e.listeners[event] = append(ents[:i:i], ents[i+1:]...)
			if len(e.listeners[event]) == 0 {
				delete(e.listeners, event)
			}
			return
		}
	}
}

// Emit invokes every listener registered for the named event, in
// registration order, passing args through unchanged. Returns true if
// at least one listener was invoked.
//
// Listeners may register and remove listeners (including themselves)
// during delivery: the set of listeners is snapshotted at the start of
// Emit, and entries removed mid-delivery are skipped.
func (e *Emitter) Emit(event string, args ...any) bool {
	ents := e.listeners[event]
	if len(ents) == 0 {
		return false
	}
	snapshot := make([]entry, len(ents))
	copy(snapshot, ents)

	delivered := false
	for _, ent := range snapshot {
		if !e.active(event, ent.handle) {
			continue
		}
		if ent.once {
			e.Off(event, ent.handle)
		}
		ent.fn(args...)
		delivered = true
	}
	return delivered
}

func (e *Emitter) active(event string, h Handle) bool {
	for _, ent := range e.listeners[event] {
		if ent.handle == h {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for the
// named event.
func (e *Emitter) ListenerCount(event string) int {
	return len(e.listeners[event])
}

// RemoveAllListeners removes every listener for the named events, or
// every listener for every event when called with no arguments.
func (e *Emitter) RemoveAllListeners(events ...string) {
	if len(events) == 0 {
		e.listeners = make(map[string][]entry)
		return
	}
	for _, event := range events {
		delete(e.listeners, event)
	}
}
