// Package pipeline coordinates asynchronous sprite-asset processing.
//
// Callers submit byte-source handles and drive the pipeline by invoking
// Poll from their update loop. Poll never blocks: it checks byte
// readiness, moves every ready submission into one background batch, and
// drains finished batches from the outbox with a non-blocking lock
// attempt. Heavy work (decoding, extraction, atlas packing) happens on
// background workers; materialization into the destination stores happens
// inside Poll, on the caller's goroutine, which is the only goroutine
// allowed to touch those stores.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"asepack/internal/atlas"
	"asepack/internal/bytesource"
	"asepack/internal/document"
	"asepack/internal/extract"
	"asepack/internal/logging"
	"asepack/internal/materialize"
)

// Failure records one file that was dropped from a batch.
type Failure struct {
	File string
	Err  error
}

// Recorder persists materialized results. Implementations are optional;
// the catalog provides one.
type Recorder interface {
	RecordFile(ctx context.Context, batchID string, file *materialize.File) error
	RecordFailure(ctx context.Context, batchID, file, reason string) error
}

// Config tunes the pipeline.
type Config struct {
	// Workers caps how many batches decode and pack concurrently.
	Workers int
	// Atlas bounds the packer.
	Atlas atlas.Options
}

func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}

// Pipeline is the batch coordinator. Submit, Poll, IsIdle, and
// PendingCount must all be called from the same goroutine; the outbox is
// the only structure shared with background workers.
type Pipeline struct {
	cfg      Config
	logger   *slog.Logger
	source   bytesource.Source
	decoder  document.Decoder
	targets  *materialize.Targets
	recorder Recorder

	pending    []bytesource.Handle
	pendingSet map[bytesource.Handle]struct{}

	inFlight atomic.Int32
	workers  chan struct{}

	outboxMu sync.Mutex
	outbox   []*outcome
}

// outcome is the self-contained result of one background batch.
type outcome struct {
	id       string
	batch    *materialize.Batch
	failures []Failure
}

// New constructs a pipeline. The recorder may be nil.
func New(cfg Config, source bytesource.Source, decoder document.Decoder, targets *materialize.Targets, recorder Recorder, logger *slog.Logger) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		source:     source,
		decoder:    decoder,
		targets:    targets,
		recorder:   recorder,
		pendingSet: make(map[bytesource.Handle]struct{}),
		workers:    make(chan struct{}, cfg.Workers),
	}
}

// Submit enqueues a file handle for processing. Submitting a handle that
// is already pending is a no-op, so double submissions before dispatch
// collapse into one unit of work.
func (p *Pipeline) Submit(h bytesource.Handle) {
	if _, ok := p.pendingSet[h]; ok {
		return
	}
	p.pendingSet[h] = struct{}{}
	p.pending = append(p.pending, h)
}

// IsIdle reports whether no submissions are pending and no batch is in
// flight. This is the caller's sole termination signal: an empty outbox
// alone never implies idleness while a batch is still running.
func (p *Pipeline) IsIdle() bool {
	return len(p.pending) == 0 && p.inFlight.Load() == 0
}

// PendingCount returns the number of batches currently in flight.
func (p *Pipeline) PendingCount() int {
	return int(p.inFlight.Load())
}

// Poll advances the pipeline one step: drop submissions whose byte loads
// failed, dispatch a batch once every remaining submission is byte-ready,
// and drain finished batches into the destination stores. It never blocks.
func (p *Pipeline) Poll(ctx context.Context) {
	p.reapFailedLoads()
	p.dispatchReady()
	p.drain(ctx)
}

// reapFailedLoads removes submissions whose byte source reported failure.
// A failed load is definitive: the file never reaches the index.
func (p *Pipeline) reapFailedLoads() {
	kept := p.pending[:0]
	for _, h := range p.pending {
		if p.source.State(h) != bytesource.StateFailed {
			kept = append(kept, h)
			continue
		}
		name, _, err := p.source.Take(h)
		p.logger.Warn("dropping submission, byte load failed",
			logging.String(logging.FieldFile, name),
			logging.Error(err),
		)
		delete(p.pendingSet, h)
	}
	p.pending = kept
}

type loadedFile struct {
	name string
	data []byte
}

// dispatchReady moves ALL pending handles into a single background batch
// once every one of them is byte-ready. Batching submissions that arrive
// close together amortizes atlas packing across the whole set.
func (p *Pipeline) dispatchReady() {
	if len(p.pending) == 0 {
		return
	}
	for _, h := range p.pending {
		if p.source.State(h) != bytesource.StateReady {
			return
		}
	}

	inputs := make([]loadedFile, 0, len(p.pending))
	for _, h := range p.pending {
		name, data, err := p.source.Take(h)
		if err != nil {
			p.logger.Warn("submission bytes unavailable at dispatch",
				logging.String(logging.FieldFile, name),
				logging.Error(err),
			)
			continue
		}
		inputs = append(inputs, loadedFile{name: name, data: data})
	}
	p.pending = p.pending[:0]
	clear(p.pendingSet)
	if len(inputs) == 0 {
		return
	}

	batchID := uuid.NewString()
	p.logger.Debug("dispatching batch",
		logging.String(logging.FieldBatchID, batchID),
		logging.Int("files", len(inputs)),
	)
	p.inFlight.Add(1)
	go p.runBatch(batchID, inputs)
}

// runBatch executes decode, extraction, and packing off the main context
// and publishes a self-contained result bundle to the outbox. Per-file
// failures are isolated: they never abort sibling files in the batch, and
// the batch always reaches the outbox so accounting settles.
func (p *Pipeline) runBatch(batchID string, inputs []loadedFile) {
	p.workers <- struct{}{}
	defer func() { <-p.workers }()

	var failures []Failure
	files := make([]materialize.File, 0, len(inputs))
	var atlasInputs []atlas.Input

	for _, in := range inputs {
		doc, err := p.decoder.Decode(in.name, in.data)
		var records *extract.FileRecords
		if err == nil {
			records, err = extract.File(doc)
		}
		if err != nil {
			failures = append(failures, Failure{File: in.name, Err: err})
			continue
		}

		files = append(files, materialize.File{
			Path:       records.File,
			Frames:     records.Frames,
			Animations: records.Animations,
			Tilesets:   records.Tilesets,
			Slices:     records.Slices,
		})
		for _, frame := range records.Frames {
			atlasInputs = append(atlasInputs, atlas.Input{
				Key:   atlas.Key{File: frame.File, Frame: frame.Index},
				Image: frame.Image,
			})
		}
	}

	packed := atlas.Pack(atlasInputs, p.cfg.Atlas)
	if len(packed.Failures) > 0 {
		dropped := make(map[string]struct{}, len(packed.Failures))
		for _, failure := range packed.Failures {
			dropped[failure.File] = struct{}{}
			failures = append(failures, Failure{File: failure.File, Err: failure.Err})
		}
		kept := files[:0]
		for _, f := range files {
			if _, drop := dropped[f.Path]; !drop {
				kept = append(kept, f)
			}
		}
		files = kept
	}

	result := &outcome{
		id: batchID,
		batch: &materialize.Batch{
			Sheets:     packed.Sheets,
			Placements: packed.Placements,
			Files:      files,
		},
		failures: failures,
	}

	p.outboxMu.Lock()
	p.outbox = append(p.outbox, result)
	p.outboxMu.Unlock()
}

// drain attempts a non-blocking acquisition of the outbox and materializes
// every finished batch it finds. On contention it skips cleanly; the next
// poll will pick the results up. The in-flight counter decrements once per
// drained batch, failed files included, so IsIdle always converges.
func (p *Pipeline) drain(ctx context.Context) {
	if !p.outboxMu.TryLock() {
		return
	}
	results := p.outbox
	p.outbox = nil
	p.outboxMu.Unlock()

	for _, oc := range results {
		p.materializeBatch(ctx, oc)
		p.inFlight.Add(-1)
	}
}

func (p *Pipeline) materializeBatch(ctx context.Context, oc *outcome) {
	logger := p.logger.With(logging.String(logging.FieldBatchID, oc.id))

	for i := range oc.batch.Files {
		file := &oc.batch.Files[i]
		if err := p.targets.File(oc.batch, file); err != nil {
			// A missing placement is a pipeline bug, not user input.
			logger.Error("materialization invariant violated",
				logging.String(logging.FieldFile, file.Path),
				logging.Error(err),
			)
			continue
		}
		logger.Debug("materialized file",
			logging.String(logging.FieldFile, file.Path),
			logging.Int("frames", len(file.Frames)),
			logging.Int("animations", len(file.Animations)),
		)
		if p.recorder != nil {
			if err := p.recorder.RecordFile(ctx, oc.id, file); err != nil {
				logger.Warn("catalog record failed",
					logging.String(logging.FieldFile, file.Path),
					logging.Error(err),
				)
			}
		}
	}

	for _, failure := range oc.failures {
		logger.Warn("file dropped from batch",
			logging.String(logging.FieldFile, failure.File),
			logging.Error(failure.Err),
		)
		if p.recorder != nil {
			if err := p.recorder.RecordFailure(ctx, oc.id, failure.File, failure.Err.Error()); err != nil {
				logger.Warn("catalog record failed",
					logging.String(logging.FieldFile, failure.File),
					logging.Error(err),
				)
			}
		}
	}
}
