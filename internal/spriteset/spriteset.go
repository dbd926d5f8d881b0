// Package spriteset decodes sprite-set manifests into documents.
//
// A sprite set is a directory holding one sprite.toml manifest plus the
// PNG images it references: one image per frame and one vertical-strip
// image per tileset. It gives tooling and tests a concrete
// document.Decoder without taking a dependency on any particular sprite
// editor's binary format.
package spriteset

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"asepack/internal/document"
)

// ManifestName is the file the decoder expects inside a sprite set.
const ManifestName = "sprite.toml"

type manifest struct {
	Frames   []manifestFrame   `toml:"frames"`
	Tags     []manifestTag     `toml:"tags"`
	Tilesets []manifestTileset `toml:"tilesets"`
	Slices   []manifestSlice   `toml:"slices"`
}

type manifestFrame struct {
	Image      string `toml:"image"`
	DurationMS uint32 `toml:"duration_ms"`
}

type manifestTag struct {
	Name string `toml:"name"`
	From int    `toml:"from"`
	To   int    `toml:"to"`
}

type manifestTileset struct {
	ID         uint32 `toml:"id"`
	Name       string `toml:"name"`
	TileWidth  int    `toml:"tile_width"`
	TileHeight int    `toml:"tile_height"`
	TileCount  uint32 `toml:"tile_count"`
	Image      string `toml:"image"`
}

type manifestSlice struct {
	Name string             `toml:"name"`
	Text string             `toml:"text"`
	Keys []manifestSliceKey `toml:"keys"`
}

type manifestSliceKey struct {
	Frame  uint32 `toml:"frame"`
	X      int    `toml:"x"`
	Y      int    `toml:"y"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Decoder implements document.Decoder for sprite-set manifests. The name
// passed to Decode must be the manifest path; referenced images load
// relative to its directory.
type Decoder struct{}

// New constructs a sprite-set decoder.
func New() *Decoder { return &Decoder{} }

// Decode implements document.Decoder.
func (d *Decoder) Decode(name string, data []byte) (*document.Document, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, document.DecodeErrorf("%s: parse manifest: %v", name, err)
	}

	dir := filepath.Dir(name)
	doc := &document.Document{Name: name}

	for i, frame := range m.Frames {
		img, err := loadPNG(filepath.Join(dir, frame.Image))
		if err != nil {
			return nil, document.DecodeErrorf("%s: frame %d: %v", name, i, err)
		}
		duration := frame.DurationMS
		if duration == 0 {
			duration = 100
		}
		doc.Frames = append(doc.Frames, document.Frame{Image: img, DurationMS: duration})
	}

	for _, tag := range m.Tags {
		doc.Tags = append(doc.Tags, document.Tag{Name: tag.Name, From: tag.From, To: tag.To})
	}

	for _, ts := range m.Tilesets {
		img, err := loadPNG(filepath.Join(dir, ts.Image))
		if err != nil {
			return nil, document.DecodeErrorf("%s: tileset %s: %v", name, ts.Name, err)
		}
		doc.Tilesets = append(doc.Tilesets, document.Tileset{
			ID:         ts.ID,
			Name:       ts.Name,
			TileWidth:  ts.TileWidth,
			TileHeight: ts.TileHeight,
			TileCount:  ts.TileCount,
			Image:      img,
		})
	}

	for _, slice := range m.Slices {
		keys := make([]document.SliceKey, 0, len(slice.Keys))
		for _, key := range slice.Keys {
			keys = append(keys, document.SliceKey{
				FrameIndex: key.Frame,
				Bounds:     image.Rect(key.X, key.Y, key.X+key.Width, key.Y+key.Height),
			})
		}
		var userData *document.UserData
		if slice.Text != "" {
			userData = &document.UserData{Text: slice.Text}
		}
		doc.Slices = append(doc.Slices, document.Slice{
			Name:     slice.Name,
			Keys:     keys,
			UserData: userData,
		})
	}

	return doc, nil
}

func loadPNG(path string) (*image.NRGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// WriteManifest is a helper for tools and tests: it renders a manifest
// plus its images into dir as a decodable sprite set and returns the
// manifest path.
func WriteManifest(dir string, frames []document.Frame, tags []document.Tag) (string, error) {
	m := manifest{}
	for i, frame := range frames {
		imageName := frameFileName(i)
		if err := writePNG(filepath.Join(dir, imageName), frame.Image); err != nil {
			return "", err
		}
		m.Frames = append(m.Frames, manifestFrame{Image: imageName, DurationMS: frame.DurationMS})
	}
	for _, tag := range tags {
		m.Tags = append(m.Tags, manifestTag{Name: tag.Name, From: tag.From, To: tag.To})
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func frameFileName(index int) string {
	return fmt.Sprintf("frame_%d.png", index)
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return png.Encode(file, img)
}
