package pipevine

import "github.com/pipevine/pipevine/pkg/pipevine/emitter"

// pipeLink is the cooperative pump behind Stage.Pipe: it pulls chunks
// from src as they become readable and pushes them into dst, pausing
// on dst's backpressure and resuming on dst's drain. When src reaches
// end-of-stream the link forwards it by calling dst.End().
//
// All pumping happens synchronously on whichever goroutine triggered
// the event; the pumping flag guards against re-entry when a push into
// dst loops back around (dst drains into something that drains src).
type pipeLink struct {
	src, dst  Stage
	saturated bool
	pumping   bool

	hReadable emitter.Handle // on src
	hEnd      emitter.Handle // on src
	hDrain    emitter.Handle // on dst
}

func newPipeLink(src, dst Stage) *pipeLink {
	l := &pipeLink{src: src, dst: dst}
	l.hReadable = src.On(EventReadable, func(...any) { l.pump() })
	l.hEnd = src.On(EventEnd, func(...any) { dst.End() })
	l.hDrain = dst.On(EventDrain, func(...any) {
		l.saturated = false
		l.pump()
	})
	dst.Emit(EventPipe, src)

	// The source may already hold buffered data, or may already have
	// ended; pick both up immediately.
	l.pump()
	if stageEnded(src) {
		dst.End()
	}
	return l
}

func (l *pipeLink) pump() {
	if l.pumping {
		return
	}
	l.pumping = true
	defer func() { l.pumping = false }()

	for !l.saturated {
		chunk, ok := l.src.Read()
		if !ok {
			return
		}
		if !l.dst.Write(chunk) {
			l.saturated = true
		}
	}
}

// close detaches the link's listeners from both ends. Chunks already
// written into dst stay there; chunks still buffered in src stay in
// src.
func (l *pipeLink) close() {
	l.src.Off(EventReadable, l.hReadable)
	l.src.Off(EventEnd, l.hEnd)
	l.dst.Off(EventDrain, l.hDrain)
	l.dst.Emit(EventUnpipe, l.src)
}
