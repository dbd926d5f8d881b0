package document

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrDecode marks a malformed source document. Failures tagged with this
// sentinel are fatal to the offending file only; sibling files in the same
// batch continue processing.
var ErrDecode = errors.New("decode error")

// DecodeErrorf wraps a formatted message with the ErrDecode sentinel.
func DecodeErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

// IsDecodeError reports whether err is tagged as a decode failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}

// Document is one decoded sprite file, reduced to plain data. It is
// immutable once produced: the pipeline moves ownership of a Document into
// a background batch and never hands it back.
type Document struct {
	// Name is the file identity documents are looked up by, usually a path.
	Name string

	Frames   []Frame
	Tags     []Tag
	Tilesets []Tileset
	Slices   []Slice
}

// Frame is one cel-composited frame image plus its display duration.
type Frame struct {
	Image      *image.NRGBA
	DurationMS uint32
}

// Tag names an inclusive frame range declared in the source file.
type Tag struct {
	Name string
	From int
	To   int
}

// Tileset mirrors a source tileset. Image holds all tiles packed in a
// vertical strip: width = TileWidth, height = TileHeight * TileCount.
type Tileset struct {
	ID         uint32
	Name       string
	TileWidth  int
	TileHeight int
	TileCount  uint32
	Image      *image.NRGBA
}

// Slice is a named region of the sprite with optional user data.
type Slice struct {
	Name     string
	Keys     []SliceKey
	UserData *UserData
}

// SliceKey describes the slice geometry from a given frame onward.
type SliceKey struct {
	FrameIndex uint32
	Bounds     image.Rectangle
	Pivot      *image.Point
	// Center is the 9-slice center rectangle, relative to Bounds.
	Center *image.Rectangle
}

// UserData is the free-form payload Aseprite attaches to slices.
type UserData struct {
	Text  string
	Color *color.NRGBA
}

// Decoder turns raw file bytes into a Document. Implementations wrap
// whatever parser produces the in-memory sprite data; the pipeline treats
// them as black boxes that either succeed or fail with an ErrDecode-tagged
// error.
type Decoder interface {
	Decode(name string, data []byte) (*Document, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(name string, data []byte) (*Document, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(name string, data []byte) (*Document, error) {
	return f(name, data)
}
