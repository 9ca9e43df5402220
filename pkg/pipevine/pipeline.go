package pipevine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pipevine/pipevine/pkg/pipevine/emitter"
	"github.com/pipevine/pipevine/pkg/pipevine/observability"
)

// Pipeline composes an ordered, mutable chain of stages into a single
// virtual stage. To its own consumers it behaves exactly like one of
// its members: it satisfies the Stage contract, reports the first
// stage's backpressure on Write, and surfaces the last stage's output
// and end-of-stream on its read side. With zero stages it degrades to
// a plain passthrough buffer.
//
// Member stages are kept piped adjacent-to-adjacent; Splice and the
// convenience mutators rewire that topology atomically relative to
// data flow, so stages can be inserted, removed, or replaced while
// chunks are in flight. Chunks written after a mutation completes
// traverse the new chain only.
//
// A Pipeline and its members form one single-goroutine cooperative
// domain: all pumping and event delivery happens synchronously on the
// calling goroutine. Pipeline is NOT safe for concurrent use.
type Pipeline struct {
	*emitter.Emitter

	id  string
	cfg config

	stages []Stage

	// Composite read side (also the zero-stage passthrough buffer).
	buf        []any
	readUnits  int
	writeUnits int
	needDrain  bool

	inputEnded bool
	finished   bool
	ended      bool
	pendingEnd bool // last stage ended; end once buf drains

	// Flow-controller bindings, rewired on every splice.
	hReadable emitter.Handle // on the last stage
	hEnd      emitter.Handle // on the last stage
	hDrain    emitter.Handle // on the first stage
	pumping   bool

	// Event Rebinder registry: stage -> event name -> forwarding
	// handler. At most one handler per pair; the stage's entry is
	// deleted outright when it is fully unbound.
	forwards map[Stage]map[string]emitter.Handle

	// Shared error-tagging handler, one per member stage.
	errHandles map[Stage]emitter.Handle

	pipe *pipeLink // when the pipeline itself is piped somewhere
}

// Compile-time contract checks.
var (
	_ Stage    = (*Pipeline)(nil)
	_ namer    = (*Pipeline)(nil)
	_ buffered = (*Pipeline)(nil)
	_ ender    = (*Pipeline)(nil)
)

// New creates a pipeline, splicing in the given initial stages (which
// may be nil or empty).
//
// Example:
//
//	p := pipevine.New([]pipevine.Stage{parse, enrich, serialize},
//	    pipevine.WithObjectMode(),
//	    pipevine.WithLogger(logger))
func New(stages []Stage, opts ...Option) *Pipeline {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &Pipeline{
		Emitter:    emitter.New(),
		id:         uuid.NewString(),
		cfg:        cfg,
		forwards:   make(map[Stage]map[string]emitter.Handle),
		errHandles: make(map[Stage]emitter.Handle),
	}
	if len(stages) > 0 {
		p.Splice(0, 0, stages...)
	}
	return p
}

// ID returns the pipeline's unique identifier, used in logs and
// journal entries.
func (p *Pipeline) ID() string {
	return p.id
}

// Name returns the pipeline's diagnostic name, or "".
func (p *Pipeline) Name() string {
	return p.cfg.name
}

// Buffered returns the number of chunks queued on the composite's own
// read side. Chunks buffered inside member stages are not counted.
func (p *Pipeline) Buffered() int {
	return len(p.buf)
}

// Ended reports whether the composite has emitted EventEnd.
func (p *Pipeline) Ended() bool {
	return p.ended
}

// Write implements Stage. With zero stages the chunk goes straight to
// the composite's own read side and the return value is the
// composite's own backpressure; otherwise the chunk is handed to the
// first stage and its backpressure signal is returned unchanged. The
// first stage's drain is forwarded as the composite's EventDrain.
func (p *Pipeline) Write(chunk any) bool {
	if p.inputEnded {
		p.Emit(EventError, ErrWriteAfterEnd)
		return false
	}
	p.cfg.metrics.RecordWrite(p.cfg.ctx, int64(chunkUnits(chunk, p.cfg.writableObjectMode)))
	if len(p.stages) == 0 {
		p.pushOut(chunk)
		accepted := p.writeUnits < p.cfg.highWaterMark
		if !accepted {
			p.needDrain = true
		}
		return accepted
	}
	return p.stages[0].Write(chunk)
}

// Read implements Stage: pops the next output chunk, refilling from
// the last stage as composite buffer space frees up. Returns
// (nil, false) when nothing is buffered; the consumer resumes on the
// composite's next EventReadable.
func (p *Pipeline) Read() (any, bool) {
	if len(p.buf) == 0 {
		p.pump()
		if len(p.buf) == 0 {
			p.maybeEnd()
			return nil, false
		}
	}
	chunk := p.buf[0]
	p.buf = p.buf[1:]
	p.readUnits -= chunkUnits(chunk, p.cfg.readableObjectMode)
	p.writeUnits -= chunkUnits(chunk, p.cfg.writableObjectMode)
	p.cfg.metrics.RecordRead(p.cfg.ctx, int64(chunkUnits(chunk, p.cfg.readableObjectMode)))

	if p.needDrain && p.writeUnits < p.cfg.highWaterMark {
		p.needDrain = false
		p.Emit(EventDrain)
	}
	// The pull freed buffer space: resume draining the last stage.
	p.pump()
	if len(p.buf) == 0 {
		p.maybeEnd()
	}
	return chunk, true
}

// End signals that no further chunks will be written. Equivalent to
// EndWith(nil, nil).
func (p *Pipeline) End() {
	p.EndWith(nil, nil)
}

// EndWith optionally writes a final chunk, then closes the input side.
// With members, the close cascades through the piped chain: the first
// stage finishes, its pipe ends the second, and so on until the last
// stage's end-of-stream becomes the composite's. With zero stages the
// composite settles directly.
//
// onFinished, if non-nil, is invoked once the composite emits
// EventFinish. EndWith after End is a no-op apart from registering
// onFinished.
func (p *Pipeline) EndWith(final any, onFinished func()) {
	if onFinished != nil {
		if p.finished {
			onFinished()
		} else {
			p.Once(EventFinish, func(...any) { onFinished() })
		}
	}
	if p.inputEnded {
		return
	}
	if final != nil {
		p.Write(final)
	}
	_, span := p.cfg.spans.StartEndSpan(p.cfg.ctx)

	p.inputEnded = true
	p.finished = true
	p.Emit(EventFinish)
	if len(p.stages) > 0 {
		p.stages[0].End()
	}
	p.maybeEnd()
	p.cfg.spans.EndSpanWithError(span, nil)
}

// Pipe implements Stage, letting a pipeline be a member of another
// pipeline. One destination at a time, like any stage.
//
// Panics if dst is nil or the pipeline is already piped.
func (p *Pipeline) Pipe(dst Stage) {
	if dst == nil {
		panic("pipevine: pipe destination cannot be nil")
	}
	if p.pipe != nil {
		panic("pipevine: stage is already piped")
	}
	p.pipe = newPipeLink(p, dst)
}

// Unpipe implements Stage.
func (p *Pipeline) Unpipe(dst Stage) {
	if p.pipe == nil || p.pipe.dst != dst {
		return
	}
	p.pipe.close()
	p.pipe = nil
}

// pushOut queues a chunk on the composite's read side, announcing
// readability on the empty-to-non-empty transition.
func (p *Pipeline) pushOut(chunk any) {
	wasEmpty := len(p.buf) == 0
	p.buf = append(p.buf, chunk)
	p.readUnits += chunkUnits(chunk, p.cfg.readableObjectMode)
	p.writeUnits += chunkUnits(chunk, p.cfg.writableObjectMode)
	p.cfg.metrics.RecordBufferDepth(p.cfg.ctx, int64(len(p.buf)))
	if wasEmpty {
		p.Emit(EventReadable)
	}
}

// pump is the flow controller's read loop: drain the last stage into
// the composite buffer until the buffer reaches the high-water mark
// (the external consumer is saturated) or the stage has nothing
// buffered. It suspends by returning; the next EventReadable from the
// last stage or the next Read on the composite resumes it.
func (p *Pipeline) pump() {
	if p.pumping || len(p.stages) == 0 {
		return
	}
	p.pumping = true
	defer func() { p.pumping = false }()

	last := p.stages[len(p.stages)-1]
	for p.readUnits < p.cfg.highWaterMark {
		chunk, ok := last.Read()
		if !ok {
			return
		}
		p.pushOut(chunk)
	}
}

// bindFlow attaches the flow controller's listeners: readable and end
// on the last stage, drain forwarding on the first. Called only with
// at least one stage present.
//
// A tail that ended before it was bound never re-fires EventEnd, so
// pendingEnd is seeded from the tail's current state. This also clears
// a pendingEnd left behind by a spliced-out ended tail.
func (p *Pipeline) bindFlow() {
	last := p.stages[len(p.stages)-1]
	p.pendingEnd = stageEnded(last)
	p.hReadable = last.On(EventReadable, func(...any) { p.pump() })
	p.hEnd = last.On(EventEnd, func(...any) {
		p.pendingEnd = true
		p.maybeEnd()
	})
	first := p.stages[0]
	p.hDrain = first.On(EventDrain, func(...any) { p.Emit(EventDrain) })
}

// unbindFlow detaches the flow controller's listeners, if bound.
func (p *Pipeline) unbindFlow() {
	if len(p.stages) == 0 {
		return
	}
	last := p.stages[len(p.stages)-1]
	if p.hReadable != 0 {
		last.Off(EventReadable, p.hReadable)
		p.hReadable = 0
	}
	if p.hEnd != 0 {
		last.Off(EventEnd, p.hEnd)
		p.hEnd = 0
	}
	if p.hDrain != 0 {
		p.stages[0].Off(EventDrain, p.hDrain)
		p.hDrain = 0
	}
}

// maybeEnd emits the composite's EventEnd once its read side is truly
// done: the buffer is empty and either the last stage has ended or the
// zero-stage pipeline's input has.
func (p *Pipeline) maybeEnd() {
	if p.ended || len(p.buf) != 0 {
		return
	}
	done := p.pendingEnd || (p.inputEnded && len(p.stages) == 0)
	if !done {
		return
	}
	p.ended = true
	p.logEnd()
	p.journalEnd()
	p.Emit(EventEnd)
	if !p.cfg.halfOpen && !p.inputEnded {
		p.End()
	}
}

// attachErrorHandler installs the shared error-tagging handler on a
// member stage: errors the stage raises are wrapped in a StageError
// and re-emitted as the composite's own EventError. Idempotent.
func (p *Pipeline) attachErrorHandler(s Stage) {
	if _, ok := p.errHandles[s]; ok {
		return
	}
	h := s.On(EventError, func(args ...any) {
		var err error
		if len(args) > 0 {
			err, _ = args[0].(error)
		}
		tagged := &StageError{Stage: s, Name: stageName(s), Err: err}
		p.logStageError(tagged)
		p.cfg.metrics.RecordStageError(p.cfg.ctx, tagged.Name)
		p.journalStageError(tagged)
		p.Emit(EventError, tagged)
	})
	p.errHandles[s] = h
}

// detachErrorHandler removes the shared error handler from a stage.
func (p *Pipeline) detachErrorHandler(s Stage) {
	if h, ok := p.errHandles[s]; ok {
		s.Off(EventError, h)
		delete(p.errHandles, s)
	}
}

// Logging and journal glue. All of it is best-effort: a nil logger or
// journal disables the call, and journal write failures are logged
// rather than surfaced.

func (p *Pipeline) logSplice(index, removed, added int) {
	observability.LogSplice(p.cfg.logger, p.id, index, removed, added, len(p.stages))
}

func (p *Pipeline) logStageError(err *StageError) {
	observability.LogStageError(p.cfg.logger, p.id, err.Name, err.Err)
}

func (p *Pipeline) logEnd() {
	observability.LogEndOfStream(p.cfg.logger, p.id)
}

func (p *Pipeline) journalAttach(s Stage, index int) {
	if p.cfg.journal == nil {
		return
	}
	if err := p.cfg.journal.RecordAttach(stageName(s), index); err != nil {
		observability.LogJournalError(p.cfg.logger, p.id, err)
	}
}

func (p *Pipeline) journalDetach(s Stage, index int) {
	if p.cfg.journal == nil {
		return
	}
	if err := p.cfg.journal.RecordDetach(stageName(s), index, stageBuffered(s)); err != nil {
		observability.LogJournalError(p.cfg.logger, p.id, err)
	}
}

func (p *Pipeline) journalStageError(serr *StageError) {
	if p.cfg.journal == nil {
		return
	}
	if err := p.cfg.journal.RecordError(serr.Name, serr.Err); err != nil {
		observability.LogJournalError(p.cfg.logger, p.id, err)
	}
}

func (p *Pipeline) journalEnd() {
	if p.cfg.journal == nil {
		return
	}
	if err := p.cfg.journal.RecordEnd(); err != nil {
		observability.LogJournalError(p.cfg.logger, p.id, err)
	}
}

// Logger returns the pipeline's logger enriched with its identity, for
// callers that want to log alongside the pipeline's own entries.
func (p *Pipeline) Logger() *slog.Logger {
	return observability.EnrichLogger(p.cfg.logger, p.id, p.cfg.name)
}
