package asset

import "asepack/internal/store"

// FileAssets maps one file's produced resources to their handles.
//
// Animations and slices are keyed by name and tilesets by id and by name.
// A file may declare the same name twice; the materializer resolves that
// by keeping the last-registered handle, so a lookup always returns one
// deterministic result.
type FileAssets struct {
	animations map[string]store.Handle
	slices     map[string]store.Handle
	tilesets   map[uint32]store.Handle
	tilesetIDs map[string]store.Handle
	textures   map[int]store.Handle
	atlas      store.Handle
}

// NewFileAssets constructs an empty registration set. The materializer
// stages one per file and commits it into the FileMap only once the whole
// file has materialized.
func NewFileAssets() *FileAssets {
	return &FileAssets{
		animations: make(map[string]store.Handle),
		slices:     make(map[string]store.Handle),
		tilesets:   make(map[uint32]store.Handle),
		tilesetIDs: make(map[string]store.Handle),
		textures:   make(map[int]store.Handle),
	}
}

// Animation returns the handle for the animation with the given tag name.
// The whole-file default animation is registered under the empty name.
func (f *FileAssets) Animation(tag string) (store.Handle, bool) {
	h, ok := f.animations[tag]
	return h, ok
}

// Slice returns the handle for the slice with the given name.
func (f *FileAssets) Slice(name string) (store.Handle, bool) {
	h, ok := f.slices[name]
	return h, ok
}

// Tileset returns the handle for the tileset with the given id.
func (f *FileAssets) Tileset(id uint32) (store.Handle, bool) {
	h, ok := f.tilesets[id]
	return h, ok
}

// TilesetNamed returns the handle for the tileset with the given name.
func (f *FileAssets) TilesetNamed(name string) (store.Handle, bool) {
	h, ok := f.tilesetIDs[name]
	return h, ok
}

// Texture returns the raw frame texture handle for a frame index.
func (f *FileAssets) Texture(frame int) (store.Handle, bool) {
	h, ok := f.textures[frame]
	return h, ok
}

// Atlas returns the file's atlas handle.
func (f *FileAssets) Atlas() (store.Handle, bool) {
	return f.atlas, f.atlas.Valid()
}

// Insert API, used by the materializer only.

func (f *FileAssets) PutAnimation(tag string, h store.Handle) { f.animations[tag] = h }
func (f *FileAssets) PutSlice(name string, h store.Handle)    { f.slices[name] = h }
func (f *FileAssets) PutTexture(frame int, h store.Handle)    { f.textures[frame] = h }
func (f *FileAssets) PutAtlas(h store.Handle)                 { f.atlas = h }

func (f *FileAssets) PutTileset(id uint32, name string, h store.Handle) {
	f.tilesets[id] = h
	f.tilesetIDs[name] = h
}

// FileMap indexes produced assets by originating file. A lookup miss is an
// expected outcome, reported through the boolean result, never an error.
type FileMap struct {
	files map[string]*FileAssets
}

// NewFileMap constructs an empty index.
func NewFileMap() *FileMap {
	return &FileMap{files: make(map[string]*FileAssets)}
}

// Get returns the asset map for a file, if that file was materialized.
func (m *FileMap) Get(file string) (*FileAssets, bool) {
	f, ok := m.files[file]
	return f, ok
}

// Ensure returns the asset map for a file, creating it if needed.
// Re-materializing a file reuses its map, so repeated processing converges
// on one consistent set of handles per name.
func (m *FileMap) Ensure(file string) *FileAssets {
	if f, ok := m.files[file]; ok {
		return f
	}
	f := NewFileAssets()
	m.files[file] = f
	return f
}

// Commit merges staged registrations into the entry for a file, creating
// the entry if needed. Registrations become visible only here, after a
// whole file has materialized, so a failed file never exposes partial
// lookups and a failed reprocess leaves the previous entry untouched.
// Names overwrite name by name, converging on the latest successful run.
func (m *FileMap) Commit(file string, staged *FileAssets) {
	entry := m.Ensure(file)
	for tag, h := range staged.animations {
		entry.animations[tag] = h
	}
	for name, h := range staged.slices {
		entry.slices[name] = h
	}
	for id, h := range staged.tilesets {
		entry.tilesets[id] = h
	}
	for name, h := range staged.tilesetIDs {
		entry.tilesetIDs[name] = h
	}
	for frame, h := range staged.textures {
		entry.textures[frame] = h
	}
	if staged.atlas.Valid() {
		entry.atlas = staged.atlas
	}
}

// Len returns the number of indexed files.
func (m *FileMap) Len() int { return len(m.files) }

// Animation looks up a file's animation by tag name.
func (m *FileMap) Animation(file, tag string) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.Animation(tag)
}

// Slice looks up a file's slice by name.
func (m *FileMap) Slice(file, name string) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.Slice(name)
}

// Tileset looks up a file's tileset by id.
func (m *FileMap) Tileset(file string, id uint32) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.Tileset(id)
}

// TilesetNamed looks up a file's tileset by name.
func (m *FileMap) TilesetNamed(file, name string) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.TilesetNamed(name)
}

// Texture looks up a file's raw frame texture by frame index.
func (m *FileMap) Texture(file string, frame int) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.Texture(frame)
}

// Atlas looks up a file's packed atlas handle.
func (m *FileMap) Atlas(file string) (store.Handle, bool) {
	f, ok := m.files[file]
	if !ok {
		return 0, false
	}
	return f.Atlas()
}
