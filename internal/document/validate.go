package document

// Validate checks the structural invariants a decoded document must hold
// before it enters the pipeline. Violations are decode failures: a document
// that fails validation is treated exactly like one whose bytes could not
// be parsed.
func (d *Document) Validate() error {
	if len(d.Frames) == 0 {
		return DecodeErrorf("%s: document has no frames", d.Name)
	}
	for i, frame := range d.Frames {
		if frame.Image == nil {
			return DecodeErrorf("%s: frame %d has no pixel data", d.Name, i)
		}
	}
	for _, tag := range d.Tags {
		if tag.From < 0 || tag.To >= len(d.Frames) {
			return DecodeErrorf("%s: tag %q range [%d,%d] outside frame count %d",
				d.Name, tag.Name, tag.From, tag.To, len(d.Frames))
		}
		if tag.From > tag.To {
			return DecodeErrorf("%s: tag %q has inverted range [%d,%d]",
				d.Name, tag.Name, tag.From, tag.To)
		}
	}
	for _, ts := range d.Tilesets {
		if ts.Image == nil {
			return DecodeErrorf("%s: tileset %d (%s) has no pixel data", d.Name, ts.ID, ts.Name)
		}
		if ts.TileCount == 0 {
			return DecodeErrorf("%s: tileset %d (%s) has no tiles", d.Name, ts.ID, ts.Name)
		}
		if ts.TileWidth <= 0 || ts.TileHeight <= 0 {
			return DecodeErrorf("%s: tileset %d (%s) has invalid tile size %dx%d",
				d.Name, ts.ID, ts.Name, ts.TileWidth, ts.TileHeight)
		}
	}
	return nil
}
