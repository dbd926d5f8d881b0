// Package asset defines the engine-ready resources the pipeline produces
// and the path-keyed index they are looked up through.
package asset

import (
	"image"

	"asepack/internal/document"
	"asepack/internal/store"
)

// Atlas is one packed texture sheet: a handle to the sheet texture plus
// the slot rectangles animations index into.
type Atlas struct {
	Texture store.Handle
	Slots   []image.Rectangle
}

// Animation is an ordered list of atlas slots with display durations.
type Animation struct {
	Atlas  store.Handle
	Frames []AnimationFrame
}

// AnimationFrame shows one atlas slot for a duration in milliseconds.
type AnimationFrame struct {
	Slot       int
	DurationMS uint32
}

// TileSize is the pixel size of one tile.
type TileSize struct {
	Width  int
	Height int
}

// Tileset owns its own texture: all tiles packed in a vertical strip.
type Tileset struct {
	Name      string
	TileCount uint32
	TileSize  TileSize
	Texture   store.Handle
}

// TextureSize returns the pixel size of the tileset's strip texture,
// width = tile width and height = tile height * tile count.
func (t *Tileset) TextureSize() (int, int) {
	return t.TileSize.Width, t.TileSize.Height * int(t.TileCount)
}

// Slice is a named sprite region with keyframed geometry and optional
// user data, carried through from the source document unchanged.
type Slice struct {
	Name     string
	Keys     []document.SliceKey
	UserData *document.UserData
}
