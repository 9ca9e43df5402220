package pipevine

import "slices"

// Splice removes removeCount stages starting at index and inserts the
// given stages at that position, returning the removed stages in
// order. Semantics mirror ordered-sequence splicing: a negative index
// counts from the end, a negative removeCount means "everything from
// index to the end", and removeCount is clamped to what actually
// exists.
//
// The rewiring is atomic relative to data flow - no chunk moves while
// the topology is inconsistent: the flow controller and all adjacent
// pipes are detached first, the list is mutated, removed stages are
// fully released (error handler off, forwarding registry cleared), and
// only then is the new chain re-piped and re-observed. Chunks written
// after Splice returns traverse the new chain only; chunks still
// buffered inside a removed stage stay with it (the journal records
// how many) and its disposal belongs to the caller.
//
// Splicing into an empty pipeline at index 0 installs the stages;
// splicing every stage out leaves the pipeline in passthrough mode.
//
// Panics if any new stage is nil or is the pipeline itself.
func (p *Pipeline) Splice(index, removeCount int, stages ...Stage) []Stage {
	for _, s := range stages {
		if s == nil {
			panic("pipevine: stage cannot be nil")
		}
		if s == Stage(p) {
			panic("pipevine: pipeline cannot contain itself")
		}
	}

	n := len(p.stages)
	start := index
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if removeCount < 0 || removeCount > n-start {
		removeCount = n - start
	}

	_, span := p.cfg.spans.StartSpliceSpan(p.cfg.ctx, start, removeCount, len(stages))

	// Detach: stop observing the current tail and tear down every
	// adjacent pipe. From here until re-attach no data moves.
	p.unbindFlow()
	for i := 0; i+1 < n; i++ {
		p.stages[i].Unpipe(p.stages[i+1])
	}

	// Incoming stages get the shared error handler before they are
	// reachable, so nothing they emit is lost.
	for _, s := range stages {
		p.attachErrorHandler(s)
	}

	removed := make([]Stage, removeCount)
	copy(removed, p.stages[start:start+removeCount])
	p.stages = slices.Concat(p.stages[:start:start], stages, p.stages[start+removeCount:])

	// Removed stages are fully released before anything is re-wired:
	// error handler off, every forwarded event unbound.
	for _, s := range removed {
		p.journalDetach(s, start)
		p.detachErrorHandler(s)
		p.UnbindAll(s)
	}

	for i := 0; i+1 < len(p.stages); i++ {
		p.stages[i].Pipe(p.stages[i+1])
	}
	if len(p.stages) > 0 {
		p.bindFlow()
	} else {
		// Passthrough mode: end-of-stream is driven by the composite's
		// own input, not by a stage that is no longer a member.
		p.pendingEnd = false
	}

	for i, s := range stages {
		p.journalAttach(s, start+i)
	}
	p.logSplice(start, len(removed), len(stages))
	p.cfg.metrics.RecordSplice(p.cfg.ctx, len(stages), len(removed))
	p.cfg.spans.EndSpanWithError(span, nil)

	// The new tail may already hold data (or the pipeline may have
	// just become a drained passthrough); settle both immediately.
	p.pump()
	p.maybeEnd()

	return removed
}

// Len returns the current number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Get returns the stage at index, supporting negative indexing from
// the end. Out-of-range indexes return nil.
func (p *Pipeline) Get(index int) Stage {
	if index < 0 {
		index += len(p.stages)
	}
	if index < 0 || index >= len(p.stages) {
		return nil
	}
	return p.stages[index]
}

// IndexOf returns the position of s by reference identity, or -1 when
// absent. An optional fromIndex starts the search there; negative
// values count from the end.
func (p *Pipeline) IndexOf(s Stage, fromIndex ...int) int {
	n := len(p.stages)
	start := 0
	if len(fromIndex) > 0 {
		start = fromIndex[0]
		if start < 0 {
			start += n
			if start < 0 {
				start = 0
			}
		}
	}
	for i := start; i < n; i++ {
		if p.stages[i] == s {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the position of s searching backwards, or -1
// when absent. An optional fromIndex bounds the search from above;
// negative values count from the end.
func (p *Pipeline) LastIndexOf(s Stage, fromIndex ...int) int {
	n := len(p.stages)
	start := n - 1
	if len(fromIndex) > 0 {
		start = fromIndex[0]
		if start < 0 {
			start += n
		}
		if start >= n {
			start = n - 1
		}
	}
	for i := start; i >= 0; i-- {
		if p.stages[i] == s {
			return i
		}
	}
	return -1
}

// Append adds stages at the end of the chain and returns the new
// length.
func (p *Pipeline) Append(stages ...Stage) int {
	p.Splice(len(p.stages), 0, stages...)
	return len(p.stages)
}

// Prepend adds stages at the front of the chain and returns the new
// length.
func (p *Pipeline) Prepend(stages ...Stage) int {
	p.Splice(0, 0, stages...)
	return len(p.stages)
}

// Insert adds stages at the given position and returns the new length.
// A negative index counts from the end.
//
// Panics if index is outside [-Len(), Len()]; the chain is left
// unmodified.
func (p *Pipeline) Insert(index int, stages ...Stage) int {
	n := len(p.stages)
	if index < -n || index > n {
		panic("pipevine: insert index out of range")
	}
	p.Splice(index, 0, stages...)
	return len(p.stages)
}

// Remove detaches the given stage from the chain and returns it, or
// returns nil when the stage is not a member.
func (p *Pipeline) Remove(s Stage) Stage {
	i := p.IndexOf(s)
	if i < 0 {
		return nil
	}
	return p.Splice(i, 1)[0]
}

// Shift removes and returns the first stage, or nil when the pipeline
// is empty.
func (p *Pipeline) Shift() Stage {
	if len(p.stages) == 0 {
		return nil
	}
	return p.Splice(0, 1)[0]
}

// Pop removes and returns the last stage, or nil when the pipeline is
// empty.
func (p *Pipeline) Pop() Stage {
	if len(p.stages) == 0 {
		return nil
	}
	return p.Splice(len(p.stages)-1, 1)[0]
}
