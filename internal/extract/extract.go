// Package extract flattens decoded documents into intermediate records.
//
// Extraction is a pure transformation: it allocates no resource identities
// and touches no stores, so batches of files can run it on background
// workers. Final identities are assigned later, by package materialize.
package extract

import (
	"image"

	"asepack/internal/document"
)

// Frame is one frame image extracted from a file, still keyed by its
// position in that file.
type Frame struct {
	File       string
	Index      int
	Image      *image.NRGBA
	DurationMS uint32
}

// Animation is an ordered list of frame indices for one (file, tag) pair.
// An empty Tag denotes the whole-file default animation.
type Animation struct {
	File   string
	Tag    string
	Frames []int
}

// Tileset is a pass-through tileset record tagged with its file.
type Tileset struct {
	File string
	document.Tileset
}

// Slice is a pass-through slice record tagged with its file.
type Slice struct {
	File string
	document.Slice
}

// FileRecords holds everything extracted from a single document.
type FileRecords struct {
	File       string
	Frames     []Frame
	Animations []Animation
	Tilesets   []Tileset
	Slices     []Slice
}

// File extracts all records from one document. The first animation always
// covers every frame of the file in order; tag animations follow in the
// order the source declared them. Duplicate tag, tileset, and slice names
// are all kept here; the materializer applies the tie-break.
func File(doc *document.Document) (*FileRecords, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	records := &FileRecords{File: doc.Name}

	records.Frames = make([]Frame, 0, len(doc.Frames))
	for i, frame := range doc.Frames {
		records.Frames = append(records.Frames, Frame{
			File:       doc.Name,
			Index:      i,
			Image:      frame.Image,
			DurationMS: frame.DurationMS,
		})
	}

	records.Animations = make([]Animation, 0, len(doc.Tags)+1)
	records.Animations = append(records.Animations, Animation{
		File:   doc.Name,
		Frames: frameRange(0, len(doc.Frames)-1),
	})
	for _, tag := range doc.Tags {
		records.Animations = append(records.Animations, Animation{
			File:   doc.Name,
			Tag:    tag.Name,
			Frames: frameRange(tag.From, tag.To),
		})
	}

	records.Tilesets = make([]Tileset, 0, len(doc.Tilesets))
	for _, ts := range doc.Tilesets {
		records.Tilesets = append(records.Tilesets, Tileset{File: doc.Name, Tileset: ts})
	}

	records.Slices = make([]Slice, 0, len(doc.Slices))
	for _, slice := range doc.Slices {
		records.Slices = append(records.Slices, Slice{File: doc.Name, Slice: slice})
	}

	return records, nil
}

// frameRange returns [from, from+1, ..., to], both ends inclusive.
func frameRange(from, to int) []int {
	frames := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		frames = append(frames, i)
	}
	return frames
}
