// Package atlas packs extracted frame images into texture sheets.
//
// The packer runs on background workers: its cost scales with the total
// frame count of a batch, which is exactly why submissions that arrive
// close together are dispatched as one batch.
package atlas

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"image"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// ErrPacking marks frames that cannot be placed in any sheet. A packing
// failure is fatal to the owning file, not to the batch.
var ErrPacking = errors.New("packing error")

// Key identifies one packing input: a frame of a specific file.
type Key struct {
	File  string
	Frame int
}

// Input is one frame image to pack.
type Input struct {
	Key   Key
	Image *image.NRGBA
}

// Placement locates a packed frame: the sheet it landed on and the slot
// index within that sheet. Identical frame images on the same sheet share
// one slot.
type Placement struct {
	Sheet int
	Slot  int
}

// Sheet is one packed atlas image plus its slot rectangles. Slot indices
// in Placement refer to positions in Slots.
type Sheet struct {
	Image *image.NRGBA
	Slots []image.Rectangle
}

// Options bound the packer. Zero values fall back to 2048x2048 with no
// padding.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Padding   int
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = 2048
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = 2048
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// FileFailure reports a file whose frames could not be packed.
type FileFailure struct {
	File string
	Err  error
}

// Result holds every produced sheet and exactly one placement per input
// key of every file that packed successfully.
type Result struct {
	Sheets     []Sheet
	Placements map[Key]Placement
	Failures   []FileFailure
}

// Pack shelf-packs the inputs into as few sheets as the size limits allow.
//
// All frames of one file land on the same sheet, so every animation can
// reference a single atlas; files whose frames together exceed one sheet
// fail with ErrPacking and are dropped whole, without aborting the batch.
// Output is deterministic for a fixed input order: files pack in order of
// first appearance, and within a file frames are sorted by height with a
// stable sort, so equal-height frames keep their submission order.
func Pack(inputs []Input, opts Options) *Result {
	opts = opts.withDefaults()
	result := &Result{Placements: make(map[Key]Placement, len(inputs))}

	files, order := groupByFile(inputs)

	sheet := newSheetLayout(opts)
	for _, file := range order {
		frames := sortedByHeight(files[file])

		placed, err := sheet.placeFile(frames)
		if err != nil {
			// Retry on a fresh sheet before giving up on the file.
			result.flush(sheet)
			sheet = newSheetLayout(opts)
			placed, err = sheet.placeFile(frames)
		}
		if err != nil {
			result.Failures = append(result.Failures, FileFailure{File: file, Err: err})
			continue
		}
		sheetIndex := len(result.Sheets)
		for key, slot := range placed {
			result.Placements[key] = Placement{Sheet: sheetIndex, Slot: slot}
		}
	}
	result.flush(sheet)
	return result
}

func (r *Result) flush(layout *sheetLayout) {
	if sheet, ok := layout.compose(); ok {
		r.Sheets = append(r.Sheets, sheet)
	}
}

func groupByFile(inputs []Input) (map[string][]Input, []string) {
	files := make(map[string][]Input)
	var order []string
	for _, in := range inputs {
		if _, seen := files[in.Key.File]; !seen {
			order = append(order, in.Key.File)
		}
		files[in.Key.File] = append(files[in.Key.File], in)
	}
	return files, order
}

func sortedByHeight(frames []Input) []Input {
	sorted := make([]Input, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Image.Bounds().Dy() > sorted[j].Image.Bounds().Dy()
	})
	return sorted
}

// sheetLayout is the shelf-packing state of one sheet under construction.
type sheetLayout struct {
	opts         Options
	placed       []pending
	x, y, shelfH int
	usedW, usedH int
	digests      map[frameDigest]int
}

type pending struct {
	input Input
	rect  image.Rectangle
}

func newSheetLayout(opts Options) *sheetLayout {
	return &sheetLayout{opts: opts, digests: make(map[frameDigest]int)}
}

// placeFile lays out one file's frames. On failure the layout is rolled
// back to its state before the call, so the caller can retry elsewhere.
func (s *sheetLayout) placeFile(frames []Input) (map[Key]int, error) {
	saved := *s
	saved.placed = s.placed[:len(s.placed):len(s.placed)]

	slots := make(map[Key]int, len(frames))
	savedDigests := make([]frameDigest, 0, len(frames))
	for _, in := range frames {
		digest := digestOf(in.Image)
		if slot, ok := s.digests[digest]; ok {
			slots[in.Key] = slot
			continue
		}
		slot, err := s.place(in)
		if err != nil {
			*s = saved
			for _, d := range savedDigests {
				delete(s.digests, d)
			}
			return nil, err
		}
		slots[in.Key] = slot
		s.digests[digest] = slot
		savedDigests = append(savedDigests, digest)
	}
	return slots, nil
}

func (s *sheetLayout) place(in Input) (int, error) {
	size := in.Image.Bounds().Size()
	w := size.X + 2*s.opts.Padding
	h := size.Y + 2*s.opts.Padding
	if w > s.opts.MaxWidth || h > s.opts.MaxHeight {
		return 0, fmt.Errorf("%w: frame %d of %s is %dx%d, larger than maximum sheet %dx%d",
			ErrPacking, in.Key.Frame, in.Key.File, size.X, size.Y, s.opts.MaxWidth, s.opts.MaxHeight)
	}

	if s.x+w > s.opts.MaxWidth {
		// Next shelf.
		s.y += s.shelfH
		s.x, s.shelfH = 0, 0
	}
	if s.y+h > s.opts.MaxHeight {
		return 0, fmt.Errorf("%w: sheet full at frame %d of %s", ErrPacking, in.Key.Frame, in.Key.File)
	}

	rect := image.Rect(
		s.x+s.opts.Padding,
		s.y+s.opts.Padding,
		s.x+s.opts.Padding+size.X,
		s.y+s.opts.Padding+size.Y,
	)
	slot := len(s.placed)
	s.placed = append(s.placed, pending{input: in, rect: rect})

	s.x += w
	if h > s.shelfH {
		s.shelfH = h
	}
	if s.x > s.usedW {
		s.usedW = s.x
	}
	if s.y+s.shelfH > s.usedH {
		s.usedH = s.y + s.shelfH
	}
	return slot, nil
}

// compose renders the layout into a sheet image sized to its used extent.
func (s *sheetLayout) compose() (Sheet, bool) {
	if len(s.placed) == 0 {
		return Sheet{}, false
	}
	img := image.NewNRGBA(image.Rect(0, 0, s.usedW, s.usedH))
	slots := make([]image.Rectangle, 0, len(s.placed))
	for _, p := range s.placed {
		xdraw.Draw(img, p.rect, p.input.Image, p.input.Image.Bounds().Min, xdraw.Src)
		slots = append(slots, p.rect)
	}
	return Sheet{Image: img, Slots: slots}, true
}

type frameDigest struct {
	w, h int
	sum  [sha256.Size]byte
}

func digestOf(img *image.NRGBA) frameDigest {
	return frameDigest{
		w:   img.Bounds().Dx(),
		h:   img.Bounds().Dy(),
		sum: sha256.Sum256(img.Pix),
	}
}
