package pipevine

import "github.com/pipevine/pipevine/pkg/pipevine/emitter"

// Standard event names emitted by stages. Stages may additionally emit
// arbitrary custom events; Pipeline.Bind forwards those by name.
const (
	// EventReadable fires when a stage's read buffer transitions from
	// empty to non-empty. Consumers should then call Read until it
	// reports no data.
	EventReadable = "readable"

	// EventEnd fires once, when a stage will never produce data again:
	// its input has ended and its buffer has drained.
	EventEnd = "end"

	// EventFinish fires once, when a stage has processed all writes
	// (End was called and any flush has run).
	EventFinish = "finish"

	// EventDrain fires when a stage that previously reported
	// backpressure from Write can accept writes again.
	EventDrain = "drain"

	// EventError carries an error as its single argument.
	EventError = "error"

	// EventPipe and EventUnpipe fire on a destination stage when a
	// source starts or stops piping into it, carrying the source.
	EventPipe   = "pipe"
	EventUnpipe = "unpipe"
)

// Stage is the contract every pipeline member satisfies, and that the
// Pipeline composite itself satisfies in turn. A Stage is a
// bidirectional unit: chunks are pushed in with Write and pulled out
// with Read, with events signalling readiness, completion, and
// backpressure.
//
// Chunks are untyped. In the default byte mode a chunk is expected to
// be a []byte or string for buffer accounting; in object mode any
// value counts as one unit. See WithObjectMode.
//
// Implementations are NOT required to be safe for concurrent use; a
// stage and the pipeline containing it belong to a single cooperative
// execution context (see the package documentation).
type Stage interface {
	// Write hands a chunk to the stage. The return value is the
	// backpressure signal: false means the stage's buffer is at or
	// above its high-water mark and the writer should pause until the
	// stage emits EventDrain. The chunk is accepted either way.
	Write(chunk any) bool

	// Read returns the next buffered chunk, or (nil, false) when
	// nothing is buffered. It never blocks; consumers resume on the
	// stage's next EventReadable.
	Read() (any, bool)

	// End signals that no further chunks will be written. The stage
	// emits EventFinish once all writes are processed, then EventEnd
	// once its buffer has drained.
	End()

	// Pipe wires automatic, backpressure-honoring forwarding of every
	// chunk this stage produces into dst, and forwards this stage's
	// end-of-stream by calling dst.End(). A stage pipes into at most
	// one destination at a time.
	Pipe(dst Stage)

	// Unpipe undoes a previous Pipe to dst. Unknown destinations are
	// ignored.
	Unpipe(dst Stage)

	// Event registry, see package emitter.
	On(event string, fn emitter.Listener) emitter.Handle
	Once(event string, fn emitter.Listener) emitter.Handle
	Off(event string, h emitter.Handle)
	Emit(event string, args ...any) bool
}

// namer is implemented by stages that carry a diagnostic name
// (see WithName). Used for error tagging and logging.
type namer interface {
	Name() string
}

// stageName returns the stage's diagnostic name, or "" if it has none.
func stageName(s Stage) string {
	if n, ok := s.(namer); ok {
		return n.Name()
	}
	return ""
}

// buffered is implemented by stages that can report how many chunks
// they currently hold. The splice engine uses it to journal data left
// behind in a removed stage.
type buffered interface {
	Buffered() int
}

// stageBuffered returns the number of chunks buffered inside s, or 0
// when s cannot report it.
func stageBuffered(s Stage) int {
	if b, ok := s.(buffered); ok {
		return b.Buffered()
	}
	return 0
}

// ender is implemented by stages that can report whether they have
// already emitted EventEnd. Pipe uses it to forward end-of-stream from
// a source that ended before it was piped.
type ender interface {
	Ended() bool
}

// stageEnded reports whether s has reached end-of-stream, when s can
// report it.
func stageEnded(s Stage) bool {
	if e, ok := s.(ender); ok {
		return e.Ended()
	}
	return false
}

// chunkUnits returns the buffer-accounting weight of a chunk: one unit
// per chunk in object mode, the byte length for []byte and string in
// byte mode. Other values count as one unit in either mode.
func chunkUnits(chunk any, objectMode bool) int {
	if objectMode {
		return 1
	}
	switch c := chunk.(type) {
	case []byte:
		return len(c)
	case string:
		return len(c)
	default:
		return 1
	}
}
