/*
Package pipevine composes an ordered, mutable chain of bidirectional
stages into a single virtual stage.

# Overview

pipevine is a Go library for building data pipelines that can be
reconfigured while data is flowing. A Pipeline presents itself to the
outside world as one Stage: writes enter at the front, transformed
chunks come out the back, and backpressure, completion, and errors
propagate across the whole chain. Internally the pipeline keeps its
members piped adjacent-to-adjacent and rewires that topology atomically
whenever stages are inserted, removed, or replaced, so callers never
rewire connections by hand.

The library provides:
  - A Stage contract with pull-based reads, backpressure-aware writes,
    and named events, plus Duplex, a buffered implementation of it
  - Atomic topology mutation: Splice and the convenience mutators
    Append, Prepend, Insert, Remove, Shift, Pop
  - Event forwarding from member stages to the composite (Bind)
  - Origin-tagged error propagation (StageError)
  - OpenTelemetry metrics and tracing, structured logging via slog,
    and a SQLite-backed mutation journal

# Basic Usage

Build stages, compose them, write in, read out:

	upper := pipevine.NewTransform(func(chunk any, push func(any)) error {
	    push(strings.ToUpper(chunk.(string)))
	    return nil
	}, pipevine.WithName("upper"))

	p := pipevine.New([]pipevine.Stage{upper}, pipevine.WithObjectMode())

	p.On(pipevine.EventReadable, func(...any) {
	    for {
	        chunk, ok := p.Read()
	        if !ok {
	            break
	        }
	        fmt.Println(chunk) // "HELLO"
	    }
	})

	p.Write("hello")
	p.End()

With zero stages a pipeline is a plain passthrough buffer: chunks come
out exactly as they went in.

# Reconfiguring While Flowing

Mutators may be called at any time, including between writes. Replacing
the middle stage of [A, B, C]:

	removed := p.Splice(1, 1, bPrime)

Chunks written after Splice returns traverse A, B', C; nothing further
reaches the detached B. A splice provides no guarantee about chunks
already buffered inside a removed stage - they stay in the stage,
which the caller now owns (the journal records how many were left
behind).

# Backpressure

Write returns false once the receiving stage's buffer is at its
high-water mark (default 16384 bytes, or chunks in object mode). The
writer should then pause until the pipeline emits EventDrain. The
composite reports exactly the first stage's signal, and its drain is
the first stage's drain; internal pipes handle pacing between members
automatically.

# Execution Model

A pipeline and its member stages form one cooperative, single-threaded
domain. Write, Read, End, and every mutator run on the calling
goroutine, and events fire synchronously: by the time Write returns,
the chunk has moved as far down the chain as backpressure allows.
Nothing in the core data path is safe for concurrent use; callers that
share a pipeline across goroutines must serialize access themselves.

# Observability

Enable logging, metrics, tracing, and journaling per pipeline:

	store, _ := journal.NewSQLiteStore("./journal.db")
	defer store.Close()

	p := pipevine.New(stages,
	    pipevine.WithLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil))),
	    pipevine.WithMetrics(true),
	    pipevine.WithTracing(true),
	    pipevine.WithJournal(journal.New(store, id)))

OpenTelemetry metrics: pipevine.units.written, pipevine.units.read,
pipevine.splices, pipevine.stage.errors, pipevine.buffer.depth.
Spans: pipevine.splice, pipevine.end.

# Error Handling

Errors from member stages are tagged with their origin and re-emitted
as the composite's EventError:

	p.On(pipevine.EventError, func(args ...any) {
	    var stageErr *pipevine.StageError
	    if errors.As(args[0].(error), &stageErr) {
	        log.Printf("stage %s failed: %v", stageErr.Name, stageErr.Err)
	    }
	})

A stage error never halts sibling stages; the pipeline composes, it
does not supervise. Argument errors (nil stages, out-of-range insert
indexes) panic synchronously and leave the stage list unmodified.

# Subpackages

  - emitter: the synchronous named-event listener registry
  - config: YAML/JSON pipeline configuration
  - journal: mutation/lifecycle journal (memory, SQLite)
  - observability: logging, metrics, and tracing helpers
*/
package pipevine
