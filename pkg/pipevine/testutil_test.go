package pipevine

// Shared test helpers. All stages here run in object mode so chunks
// count as one buffer unit each, which keeps high-water marks easy to
// reason about in tests.

// identity returns a named passthrough stage in object mode.
func identity(name string) *Duplex {
	return NewPassThrough(WithName(name), WithObjectMode())
}

// recording wraps an identity transform that remembers every chunk it
// processed, for asserting which stages data actually traversed.
type recording struct {
	*Duplex
	seen []any
}

func newRecording(name string) *recording {
	r := &recording{}
	r.Duplex = NewTransform(func(chunk any, push func(any)) error {
		r.seen = append(r.seen, chunk)
		push(chunk)
		return nil
	}, WithName(name), WithObjectMode())
	return r
}

// collect drains every chunk a stage produces, now and later, into the
// returned slice pointer.
func collect(s Stage) *[]any {
	out := &[]any{}
	drain := func(...any) {
		for {
			chunk, ok := s.Read()
			if !ok {
				return
			}
			*out = append(*out, chunk)
		}
	}
	s.On(EventReadable, drain)
	drain()
	return out
}

// eventFlag returns a pointer that flips to true when the stage emits
// the named event.
func eventFlag(s Stage, event string) *bool {
	fired := new(bool)
	s.On(event, func(...any) { *fired = true })
	return fired
}
