// Package bytesource abstracts the byte-loading service the pipeline
// waits on before dispatching work.
package bytesource

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// Handle identifies one requested load within a Source.
type Handle uint64

// State reports where a load stands.
type State int

const (
	// StateLoading means the bytes are not available yet.
	StateLoading State = iota
	// StateReady means the bytes can be taken.
	StateReady
	// StateFailed means the load failed; Take returns the error.
	StateFailed
)

// ErrConsumed is returned by Take when a handle's bytes were already
// moved out. Bytes transfer ownership exactly once.
var ErrConsumed = errors.New("bytes already taken")

// ErrNotReady is returned by Take while a load is still in progress. The
// entry is left intact; the bytes stay takeable once the load settles.
var ErrNotReady = errors.New("bytes not ready")

// Source reports load progress and yields raw bytes once ready.
type Source interface {
	// State returns the current load state for a handle.
	State(Handle) State
	// Take moves the loaded bytes out of the source, together with the
	// name the load was requested under. A second Take for the same
	// handle fails with ErrConsumed.
	Take(Handle) (name string, data []byte, err error)
}

type entry struct {
	name     string
	state    State
	data     []byte
	err      error
	consumed bool
}

// FileSource loads files from disk on background goroutines.
type FileSource struct {
	mu      sync.Mutex
	next    Handle
	entries map[Handle]*entry
}

// NewFileSource constructs an empty file source.
func NewFileSource() *FileSource {
	return &FileSource{entries: make(map[Handle]*entry)}
}

// Load begins reading a file asynchronously and returns its handle.
func (s *FileSource) Load(path string) Handle {
	s.mu.Lock()
	s.next++
	h := s.next
	s.entries[h] = &entry{name: path, state: StateLoading}
	s.mu.Unlock()

	go func() {
		data, err := os.ReadFile(path)
		s.mu.Lock()
		defer s.mu.Unlock()
		e := s.entries[h]
		if err != nil {
			e.state = StateFailed
			e.err = fmt.Errorf("read %s: %w", path, err)
			return
		}
		e.state = StateReady
		e.data = data
	}()
	return h
}

// State implements Source.
func (s *FileSource) State(h Handle) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return StateFailed
	}
	return e.state
}

// Take implements Source.
func (s *FileSource) Take(h Handle) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[h]
	if !ok {
		return "", nil, fmt.Errorf("unknown handle %d", h)
	}
	if e.consumed {
		return e.name, nil, ErrConsumed
	}
	if e.state == StateFailed {
		return e.name, nil, e.err
	}
	if e.state != StateReady {
		return e.name, nil, fmt.Errorf("%w: %s", ErrNotReady, e.name)
	}
	data := e.data
	e.data = nil
	e.consumed = true
	return e.name, data, nil
}
