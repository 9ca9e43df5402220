package pipevine

import "github.com/pipevine/pipevine/pkg/pipevine/emitter"

// Bind registers forwarding handlers for the named events on a stage:
// when the stage emits one of them, the pipeline re-emits it under the
// same name with the same arguments. This is how custom events from
// internal stages reach the composite's observers.
//
// Binding is idempotent: at most one forwarding handler exists per
// (stage, event) pair, and binding an already-bound name is a no-op.
// The registry is owned by the pipeline and keyed by stage identity;
// nothing is stashed on the stage itself beyond the listener
// registration.
//
// The stage does not need to be a member of the pipeline.
//
// Panics if s is nil.
func (p *Pipeline) Bind(s Stage, events ...string) {
	if s == nil {
		panic("pipevine: stage cannot be nil")
	}
	m := p.forwards[s]
	if m == nil {
		m = make(map[string]emitter.Handle)
		p.forwards[s] = m
	}
	for _, name := range events {
		if _, bound := m[name]; bound {
			continue
		}
		m[name] = s.On(name, func(args ...any) {
			p.Emit(name, args...)
		})
	}
}

// Unbind removes the forwarding handlers for the named events from a
// stage. Names with no bound handler are ignored. When the last bound
// event is removed the stage's registry entry is deleted entirely.
func (p *Pipeline) Unbind(s Stage, events ...string) {
	m := p.forwards[s]
	if m == nil {
		return
	}
	for _, name := range events {
		if h, bound := m[name]; bound {
			s.Off(name, h)
			delete(m, name)
		}
	}
	if len(m) == 0 {
		delete(p.forwards, s)
	}
}

// UnbindAll removes every forwarding handler bound for the stage and
// deletes its registry entry. Splice invokes this automatically for
// every removed stage, so events a detached stage keeps emitting no
// longer reach the composite's observers.
func (p *Pipeline) UnbindAll(s Stage) {
	m := p.forwards[s]
	if m == nil {
		return
	}
	for name, h := range m {
		s.Off(name, h)
	}
	delete(p.forwards, s)
}
