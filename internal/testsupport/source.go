package testsupport

import (
	"errors"
	"fmt"
	"sync"

	"asepack/internal/bytesource"
	"asepack/internal/document"
)

// FakeSource is a bytesource.Source under test control: loads become
// ready or fail only when the test says so.
type FakeSource struct {
	mu      sync.Mutex
	next    bytesource.Handle
	names   map[bytesource.Handle]string
	states  map[bytesource.Handle]bytesource.State
	data    map[bytesource.Handle][]byte
	failure map[bytesource.Handle]error
	taken   map[bytesource.Handle]bool
}

// NewFakeSource constructs an empty fake source.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		names:   make(map[bytesource.Handle]string),
		states:  make(map[bytesource.Handle]bytesource.State),
		data:    make(map[bytesource.Handle][]byte),
		failure: make(map[bytesource.Handle]error),
		taken:   make(map[bytesource.Handle]bool),
	}
}

// Add registers a load in the loading state and returns its handle.
func (s *FakeSource) Add(name string) bytesource.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.names[s.next] = name
	s.states[s.next] = bytesource.StateLoading
	return s.next
}

// AddReady registers a load that is immediately ready. The payload bytes
// are the name itself; pair with a DocumentDecoder keyed by name.
func (s *FakeSource) AddReady(name string) bytesource.Handle {
	h := s.Add(name)
	s.SetReady(h, []byte(name))
	return h
}

// SetReady marks a handle ready with the given payload.
func (s *FakeSource) SetReady(h bytesource.Handle, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[h] = bytesource.StateReady
	s.data[h] = payload
}

// SetFailed marks a handle failed.
func (s *FakeSource) SetFailed(h bytesource.Handle, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[h] = bytesource.StateFailed
	s.failure[h] = err
}

// State implements bytesource.Source.
func (s *FakeSource) State(h bytesource.Handle) bytesource.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[h]
	if !ok {
		return bytesource.StateFailed
	}
	return state
}

// Take implements bytesource.Source.
func (s *FakeSource) Take(h bytesource.Handle) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.names[h]
	if s.taken[h] {
		return name, nil, bytesource.ErrConsumed
	}
	if err, failed := s.failure[h]; failed {
		if err == nil {
			err = errors.New("load failed")
		}
		return name, nil, err
	}
	if s.states[h] != bytesource.StateReady {
		return name, nil, fmt.Errorf("%w: %s", bytesource.ErrNotReady, name)
	}
	s.taken[h] = true
	data := s.data[h]
	delete(s.data, h)
	return name, data, nil
}

// DocumentDecoder is a document.Decoder backed by a fixed name-to-document
// map; names without a document fail with a decode error.
type DocumentDecoder struct {
	Documents map[string]*document.Document
}

// NewDocumentDecoder builds a decoder serving the given documents by name.
func NewDocumentDecoder(docs ...*document.Document) *DocumentDecoder {
	d := &DocumentDecoder{Documents: make(map[string]*document.Document, len(docs))}
	for _, doc := range docs {
		d.Documents[doc.Name] = doc
	}
	return d
}

// Decode implements document.Decoder.
func (d *DocumentDecoder) Decode(name string, _ []byte) (*document.Document, error) {
	doc, ok := d.Documents[name]
	if !ok {
		return nil, document.DecodeErrorf("%s: unparseable document", name)
	}
	return doc, nil
}

// ErrBroken is a reusable failure for byte-load tests.
var ErrBroken = fmt.Errorf("simulated byte load failure")
