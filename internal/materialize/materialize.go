// Package materialize turns extracted records and atlas placements into
// final resources and registers them in the lookup index.
//
// Materialization mutates the destination stores and index, so it must run
// on the single context that owns them: the pipeline invokes it from Poll,
// never from a background batch.
package materialize

import (
	"errors"
	"fmt"
	"image"

	"asepack/internal/asset"
	"asepack/internal/atlas"
	"asepack/internal/extract"
	"asepack/internal/store"
)

// ErrMaterialize marks an internal invariant violation: an extracted record
// references a placement or sheet that does not exist. It indicates a bug
// in extraction or packing, not bad user input, and is reported loudly.
var ErrMaterialize = errors.New("materialize error")

// Targets collects the destination stores and the index. Any store may be
// nil; the corresponding resource kind is then skipped for the whole batch.
// Animations, tilesets, and per-frame textures all depend on the Textures
// store being present.
type Targets struct {
	Textures   *store.Assets[*image.NRGBA]
	Atlases    *store.Assets[*asset.Atlas]
	Animations *store.Assets[*asset.Animation]
	Tilesets   *store.Assets[*asset.Tileset]
	Slices     *store.Assets[*asset.Slice]
	Index      *asset.FileMap
}

// File bundles everything one source file contributed to a batch.
type File struct {
	Path       string
	Frames     []extract.Frame
	Animations []extract.Animation
	Tilesets   []extract.Tileset
	Slices     []extract.Slice
}

// Batch is the self-contained result of one background dispatch: per-file
// records plus the sheets and placements the packer produced for them.
type Batch struct {
	Sheets     []atlas.Sheet
	Placements map[atlas.Key]atlas.Placement
	Files      []File
}

// File materializes one file of a batch. Duplicate animation, tileset, and
// slice names within a file resolve last-wins: the record declared last in
// the source overwrites earlier ones in the index, matching insertion
// order into a map. Reprocessing a file overwrites its registered handles
// name by name, so lookups converge on the latest materialization.
//
// Index registrations are staged and committed only once the whole file
// succeeds; an invariant violation partway through leaves the index
// exactly as it was.
func (t *Targets) File(batch *Batch, file *File) error {
	var entry *asset.FileAssets
	if t.Index != nil {
		entry = asset.NewFileAssets()
	}

	atlasHandle, err := t.fileAtlas(batch, file, entry)
	if err != nil {
		return err
	}

	if t.Textures != nil {
		for _, frame := range file.Frames {
			h := t.Textures.Insert(frame.Image)
			if entry != nil {
				entry.PutTexture(frame.Index, h)
			}
		}
	}

	if t.Animations != nil && atlasHandle.Valid() {
		if err := t.fileAnimations(batch, file, atlasHandle, entry); err != nil {
			return err
		}
	}

	if t.Tilesets != nil && t.Textures != nil {
		for _, ts := range file.Tilesets {
			texture := t.Textures.Insert(ts.Image)
			h := t.Tilesets.Insert(&asset.Tileset{
				Name:      ts.Name,
				TileCount: ts.TileCount,
				TileSize:  asset.TileSize{Width: ts.TileWidth, Height: ts.TileHeight},
				Texture:   texture,
			})
			if entry != nil {
				entry.PutTileset(ts.ID, ts.Name, h)
			}
		}
	}

	if t.Slices != nil {
		for _, slice := range file.Slices {
			h := t.Slices.Insert(&asset.Slice{
				Name:     slice.Name,
				Keys:     slice.Keys,
				UserData: slice.UserData,
			})
			if entry != nil {
				entry.PutSlice(slice.Name, h)
			}
		}
	}

	if t.Index != nil {
		t.Index.Commit(file.Path, entry)
	}
	return nil
}

// fileAtlas inserts the sheet this file's frames were packed on and
// returns its handle. Files without frames on a sheet (all-failed packing
// is filtered out before materialization) are an invariant violation.
func (t *Targets) fileAtlas(batch *Batch, file *File, entry *asset.FileAssets) (store.Handle, error) {
	if t.Atlases == nil || t.Textures == nil || len(file.Frames) == 0 {
		return 0, nil
	}

	placement, ok := batch.Placements[atlas.Key{File: file.Path, Frame: file.Frames[0].Index}]
	if !ok {
		return 0, fmt.Errorf("%w: no placement for frame %d of %s",
			ErrMaterialize, file.Frames[0].Index, file.Path)
	}
	if placement.Sheet >= len(batch.Sheets) {
		return 0, fmt.Errorf("%w: placement of %s references sheet %d of %d",
			ErrMaterialize, file.Path, placement.Sheet, len(batch.Sheets))
	}

	sheet := batch.Sheets[placement.Sheet]
	texture := t.Textures.Insert(sheet.Image)
	handle := t.Atlases.Insert(&asset.Atlas{Texture: texture, Slots: sheet.Slots})
	if entry != nil {
		entry.PutAtlas(handle)
	}
	return handle, nil
}

func (t *Targets) fileAnimations(batch *Batch, file *File, atlasHandle store.Handle, entry *asset.FileAssets) error {
	durations := make(map[int]uint32, len(file.Frames))
	for _, frame := range file.Frames {
		durations[frame.Index] = frame.DurationMS
	}

	for _, anim := range file.Animations {
		frames := make([]asset.AnimationFrame, 0, len(anim.Frames))
		for _, index := range anim.Frames {
			placement, ok := batch.Placements[atlas.Key{File: file.Path, Frame: index}]
			if !ok {
				return fmt.Errorf("%w: animation %q of %s references frame %d with no placement",
					ErrMaterialize, anim.Tag, file.Path, index)
			}
			frames = append(frames, asset.AnimationFrame{
				Slot:       placement.Slot,
				DurationMS: durations[index],
			})
		}
		h := t.Animations.Insert(&asset.Animation{Atlas: atlasHandle, Frames: frames})
		if entry != nil {
			entry.PutAnimation(anim.Tag, h)
		}
	}
	return nil
}
