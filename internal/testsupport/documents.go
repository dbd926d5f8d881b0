package testsupport

import (
	"image"
	"image/color"
	"image/draw"

	"asepack/internal/document"
)

// SolidFrame returns a w x h frame filled with one color. Distinct colors
// keep frames from being deduplicated by the packer.
func SolidFrame(w, h int, c color.NRGBA, durationMS uint32) document.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return document.Frame{Image: img, DurationMS: durationMS}
}

// NewDocument builds a document with n 8x8 frames, each filled with a
// distinct color and a 100ms duration.
func NewDocument(name string, n int, tags ...document.Tag) *document.Document {
	doc := &document.Document{Name: name, Tags: tags}
	for i := 0; i < n; i++ {
		doc.Frames = append(doc.Frames, SolidFrame(8, 8, color.NRGBA{R: uint8(i + 1), A: 255}, 100))
	}
	return doc
}

// NewTileset builds a tileset with count 8x8 tiles packed vertically.
func NewTileset(id uint32, name string, count int) document.Tileset {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8*count))
	for i := 0; i < count; i++ {
		c := color.NRGBA{G: uint8(i + 1), A: 255}
		draw.Draw(img, image.Rect(0, i*8, 8, (i+1)*8), &image.Uniform{c}, image.Point{}, draw.Src)
	}
	return document.Tileset{
		ID:         id,
		Name:       name,
		TileWidth:  8,
		TileHeight: 8,
		TileCount:  uint32(count),
		Image:      img,
	}
}
