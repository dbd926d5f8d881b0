package atlas_test

import (
	"errors"
	"image/color"
	"reflect"
	"testing"

	"asepack/internal/atlas"
	"asepack/internal/testsupport"
)

func frameInput(file string, index int, w, h int, c color.NRGBA) atlas.Input {
	return atlas.Input{
		Key:   atlas.Key{File: file, Frame: index},
		Image: testsupport.SolidFrame(w, h, c, 100).Image,
	}
}

func TestPackPlacesEveryFrameOnce(t *testing.T) {
	inputs := []atlas.Input{
		frameInput("a.aseprite", 0, 8, 8, color.NRGBA{R: 1, A: 255}),
		frameInput("a.aseprite", 1, 8, 8, color.NRGBA{R: 2, A: 255}),
		frameInput("b.aseprite", 0, 16, 4, color.NRGBA{G: 1, A: 255}),
	}

	result := atlas.Pack(inputs, atlas.Options{})

	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if len(result.Placements) != len(inputs) {
		t.Fatalf("expected %d placements, got %d", len(inputs), len(result.Placements))
	}
	for _, in := range inputs {
		placement, ok := result.Placements[in.Key]
		if !ok {
			t.Fatalf("no placement for %+v", in.Key)
		}
		if placement.Sheet >= len(result.Sheets) {
			t.Fatalf("placement %+v references missing sheet", placement)
		}
		sheet := result.Sheets[placement.Sheet]
		if placement.Slot >= len(sheet.Slots) {
			t.Fatalf("placement %+v references missing slot", placement)
		}
		slot := sheet.Slots[placement.Slot]
		size := in.Image.Bounds().Size()
		if slot.Dx() != size.X || slot.Dy() != size.Y {
			t.Fatalf("slot %v does not match frame size %v", slot, size)
		}
		if !slot.In(sheet.Image.Bounds()) {
			t.Fatalf("slot %v outside sheet bounds %v", slot, sheet.Image.Bounds())
		}
	}
}

func TestPackSlotsDoNotOverlap(t *testing.T) {
	var inputs []atlas.Input
	for i := 0; i < 12; i++ {
		inputs = append(inputs, frameInput("a.aseprite", i, 8+i, 8, color.NRGBA{R: uint8(i + 1), A: 255}))
	}

	result := atlas.Pack(inputs, atlas.Options{MaxWidth: 64, MaxHeight: 64})

	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	for _, sheet := range result.Sheets {
		for i := 0; i < len(sheet.Slots); i++ {
			for j := i + 1; j < len(sheet.Slots); j++ {
				if sheet.Slots[i].Overlaps(sheet.Slots[j]) {
					t.Fatalf("slots %v and %v overlap", sheet.Slots[i], sheet.Slots[j])
				}
			}
		}
	}
}

func TestPackKeepsFileFramesOnOneSheet(t *testing.T) {
	inputs := []atlas.Input{
		frameInput("a.aseprite", 0, 8, 8, color.NRGBA{R: 1, A: 255}),
		frameInput("b.aseprite", 0, 8, 8, color.NRGBA{G: 1, A: 255}),
		frameInput("b.aseprite", 1, 8, 8, color.NRGBA{G: 2, A: 255}),
	}

	// One 8x8 frame fills a whole sheet, so file b cannot share with a and
	// must land whole on a fresh sheet or fail whole.
	result := atlas.Pack(inputs, atlas.Options{MaxWidth: 8, MaxHeight: 16})

	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if len(result.Sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(result.Sheets))
	}
	b0 := result.Placements[atlas.Key{File: "b.aseprite", Frame: 0}]
	b1 := result.Placements[atlas.Key{File: "b.aseprite", Frame: 1}]
	if b0.Sheet != b1.Sheet {
		t.Fatalf("frames of one file split across sheets %d and %d", b0.Sheet, b1.Sheet)
	}
	a0 := result.Placements[atlas.Key{File: "a.aseprite", Frame: 0}]
	if a0.Sheet == b0.Sheet {
		t.Fatal("expected files on distinct sheets under this size limit")
	}
}

func TestPackDeduplicatesIdenticalFrames(t *testing.T) {
	same := color.NRGBA{B: 9, A: 255}
	inputs := []atlas.Input{
		frameInput("a.aseprite", 0, 8, 8, same),
		frameInput("a.aseprite", 1, 8, 8, same),
		frameInput("a.aseprite", 2, 8, 8, color.NRGBA{B: 10, A: 255}),
	}

	result := atlas.Pack(inputs, atlas.Options{})

	p0 := result.Placements[atlas.Key{File: "a.aseprite", Frame: 0}]
	p1 := result.Placements[atlas.Key{File: "a.aseprite", Frame: 1}]
	p2 := result.Placements[atlas.Key{File: "a.aseprite", Frame: 2}]
	if p0 != p1 {
		t.Fatalf("identical frames should share a slot: %+v vs %+v", p0, p1)
	}
	if p0 == p2 {
		t.Fatal("distinct frames must not share a slot")
	}
	if len(result.Sheets) != 1 || len(result.Sheets[0].Slots) != 2 {
		t.Fatalf("expected one sheet with 2 slots, got %+v", result.Sheets)
	}
}

func TestPackOversizedFrameFailsOnlyItsFile(t *testing.T) {
	inputs := []atlas.Input{
		frameInput("huge.aseprite", 0, 64, 64, color.NRGBA{R: 1, A: 255}),
		frameInput("ok.aseprite", 0, 8, 8, color.NRGBA{G: 1, A: 255}),
	}

	result := atlas.Pack(inputs, atlas.Options{MaxWidth: 16, MaxHeight: 16})

	if len(result.Failures) != 1 {
		t.Fatalf("expected one failure, got %+v", result.Failures)
	}
	failure := result.Failures[0]
	if failure.File != "huge.aseprite" || !errors.Is(failure.Err, atlas.ErrPacking) {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if _, ok := result.Placements[atlas.Key{File: "huge.aseprite", Frame: 0}]; ok {
		t.Fatal("failed file must not receive placements")
	}
	if _, ok := result.Placements[atlas.Key{File: "ok.aseprite", Frame: 0}]; !ok {
		t.Fatal("sibling file should still pack")
	}
}

func TestPackPaddingSurroundsSlots(t *testing.T) {
	inputs := []atlas.Input{frameInput("a.aseprite", 0, 8, 8, color.NRGBA{R: 1, A: 255})}

	result := atlas.Pack(inputs, atlas.Options{Padding: 2})

	sheet := result.Sheets[0]
	slot := sheet.Slots[0]
	if slot.Min.X != 2 || slot.Min.Y != 2 {
		t.Fatalf("expected slot offset by padding, got %v", slot)
	}
	bounds := sheet.Image.Bounds()
	if bounds.Dx() != 12 || bounds.Dy() != 12 {
		t.Fatalf("expected 12x12 sheet, got %v", bounds)
	}
}

func TestPackCopiesPixelData(t *testing.T) {
	c := color.NRGBA{R: 200, G: 50, B: 25, A: 255}
	inputs := []atlas.Input{frameInput("a.aseprite", 0, 4, 4, c)}

	result := atlas.Pack(inputs, atlas.Options{})

	sheet := result.Sheets[0]
	slot := sheet.Slots[0]
	got := sheet.Image.NRGBAAt(slot.Min.X+1, slot.Min.Y+1)
	if got != c {
		t.Fatalf("expected pixel %v in slot, got %v", c, got)
	}
}

func TestPackIsDeterministic(t *testing.T) {
	build := func() []atlas.Input {
		var inputs []atlas.Input
		for i := 0; i < 6; i++ {
			inputs = append(inputs, frameInput("a.aseprite", i, 8, 4+i%3*4, color.NRGBA{R: uint8(i + 1), A: 255}))
		}
		inputs = append(inputs, frameInput("b.aseprite", 0, 12, 6, color.NRGBA{G: 1, A: 255}))
		return inputs
	}

	first := atlas.Pack(build(), atlas.Options{MaxWidth: 64, MaxHeight: 64})
	second := atlas.Pack(build(), atlas.Options{MaxWidth: 64, MaxHeight: 64})

	if !reflect.DeepEqual(first.Placements, second.Placements) {
		t.Fatalf("placements differ between runs:\n%+v\n%+v", first.Placements, second.Placements)
	}
	if len(first.Sheets) != len(second.Sheets) {
		t.Fatalf("sheet counts differ: %d vs %d", len(first.Sheets), len(second.Sheets))
	}
	for i := range first.Sheets {
		if !reflect.DeepEqual(first.Sheets[i].Slots, second.Sheets[i].Slots) {
			t.Fatalf("sheet %d slots differ", i)
		}
	}
}
