package pipevine

import "github.com/pipevine/pipevine/pkg/pipevine/emitter"

// TransformFunc processes one written chunk. It may call push any
// number of times (including zero) to queue output chunks; pushed
// chunks become readable in push order. A returned error is emitted as
// the stage's EventError; the written chunk is still considered
// consumed.
type TransformFunc func(chunk any, push func(any)) error

// FlushFunc runs when a stage's input ends, before EventFinish. It may
// push trailing output (e.g. a final aggregate).
type FlushFunc func(push func(any)) error

// Duplex is the bidirectional stage primitive: a buffered,
// backpressure-aware unit satisfying the Stage contract. It is both
// the building block for concrete stages (via NewTransform and
// NewPassThrough) and the reference behavior the Pipeline composite
// mirrors.
//
// A Duplex processes writes synchronously: Write runs the transform,
// queues its output, and signals readers before returning. There is no
// separate write-side buffer; the backpressure Write reports is the
// state of the read buffer, measured in write-side units (see
// WithWritableObjectMode).
//
// Duplex is NOT safe for concurrent use; see the package documentation
// for the execution model.
type Duplex struct {
	*emitter.Emitter

	name          string
	highWaterMark int
	readableObj   bool
	writableObj   bool

	transform TransformFunc
	flush     FlushFunc

	buf        []any
	readUnits  int
	writeUnits int
	needDrain  bool

	inputEnded bool
	finished   bool
	ended      bool

	pipe *pipeLink
}

// Compile-time contract checks.
var (
	_ Stage    = (*Duplex)(nil)
	_ namer    = (*Duplex)(nil)
	_ buffered = (*Duplex)(nil)
	_ ender    = (*Duplex)(nil)
)

// NewPassThrough creates a stage that forwards every written chunk
// unchanged. Useful as an identity member and as a plain buffer.
func NewPassThrough(opts ...Option) *Duplex {
	return newDuplex(nil, nil, opts)
}

// NewTransform creates a stage that runs fn on every written chunk.
//
// Panics if fn is nil; use NewPassThrough for the identity stage.
func NewTransform(fn TransformFunc, opts ...Option) *Duplex {
	if fn == nil {
		panic("pipevine: transform function cannot be nil")
	}
	return newDuplex(fn, nil, opts)
}

// NewTransformFlush creates a transform stage with a flush hook that
// runs when the stage's input ends.
//
// Panics if fn is nil.
func NewTransformFlush(fn TransformFunc, flush FlushFunc, opts ...Option) *Duplex {
	if fn == nil {
		panic("pipevine: transform function cannot be nil")
	}
	return newDuplex(fn, flush, opts)
}

func newDuplex(fn TransformFunc, flush FlushFunc, opts []Option) *Duplex {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Duplex{
		Emitter:       emitter.New(),
		name:          cfg.name,
		highWaterMark: cfg.highWaterMark,
		readableObj:   cfg.readableObjectMode,
		writableObj:   cfg.writableObjectMode,
		transform:     fn,
		flush:         flush,
	}
}

// Name returns the stage's diagnostic name, or "".
func (d *Duplex) Name() string {
	return d.name
}

// Buffered returns the number of chunks currently queued on the read
// side.
func (d *Duplex) Buffered() int {
	return len(d.buf)
}

// Ended reports whether the stage has emitted EventEnd.
func (d *Duplex) Ended() bool {
	return d.ended
}

// Write implements Stage. The chunk is run through the transform (or
// queued directly for a passthrough) before Write returns. The return
// value is false once the buffer is at or above the high-water mark;
// the writer should then wait for EventDrain.
//
// Writing after End emits ErrWriteAfterEnd on EventError and rejects
// the chunk.
func (d *Duplex) Write(chunk any) bool {
	if d.inputEnded {
		d.Emit(EventError, ErrWriteAfterEnd)
		return false
	}
	if d.transform != nil {
		if err := d.transform(chunk, d.push); err != nil {
			d.Emit(EventError, err)
		}
	} else {
		d.push(chunk)
	}
	accepted := d.writeUnits < d.highWaterMark
	if !accepted {
		d.needDrain = true
	}
	return accepted
}

// push queues an output chunk and announces readability on the
// empty-to-non-empty transition. Emitting inside push means a piped
// destination drains the chunk before the originating Write returns,
// which is what keeps the whole chain single-context.
func (d *Duplex) push(chunk any) {
	wasEmpty := len(d.buf) == 0
	d.buf = append(d.buf, chunk)
	d.readUnits += chunkUnits(chunk, d.readableObj)
	d.writeUnits += chunkUnits(chunk, d.writableObj)
	if wasEmpty {
		d.Emit(EventReadable)
	}
}

// Read implements Stage: pops the oldest buffered chunk, or reports
// (nil, false) when nothing is buffered. Crossing back under the
// high-water mark emits EventDrain for a paused writer; draining an
// ended stage emits EventEnd.
func (d *Duplex) Read() (any, bool) {
	if len(d.buf) == 0 {
		d.maybeEnd()
		return nil, false
	}
	chunk := d.buf[0]
	d.buf = d.buf[1:]
	d.readUnits -= chunkUnits(chunk, d.readableObj)
	d.writeUnits -= chunkUnits(chunk, d.writableObj)

	if d.needDrain && d.writeUnits < d.highWaterMark {
		d.needDrain = false
		d.Emit(EventDrain)
	}
	if len(d.buf) == 0 {
		d.maybeEnd()
	}
	return chunk, true
}

// End implements Stage: runs the flush hook, emits EventFinish, and
// emits EventEnd as soon as the buffer drains (immediately, when it is
// already empty). End is idempotent.
func (d *Duplex) End() {
	if d.inputEnded {
		return
	}
	d.inputEnded = true
	if d.flush != nil {
		if err := d.flush(d.push); err != nil {
			d.Emit(EventError, err)
		}
	}
	d.finished = true
	d.Emit(EventFinish)
	d.maybeEnd()
}

func (d *Duplex) maybeEnd() {
	if !d.inputEnded || d.ended || len(d.buf) != 0 {
		return
	}
	d.ended = true
	d.Emit(EventEnd)
}

// Pipe implements Stage. A Duplex pipes into at most one destination;
// splicing machinery always unpipes before re-piping.
//
// Panics if dst is nil or the stage is already piped.
func (d *Duplex) Pipe(dst Stage) {
	if dst == nil {
		panic("pipevine: pipe destination cannot be nil")
	}
	if d.pipe != nil {
		panic("pipevine: stage is already piped")
	}
	d.pipe = newPipeLink(d, dst)
}

// Unpipe implements Stage. Destinations this stage is not piped into
// are ignored.
func (d *Duplex) Unpipe(dst Stage) {
	if d.pipe == nil || d.pipe.dst != dst {
		return
	}
	d.pipe.close()
	d.pipe = nil
}
