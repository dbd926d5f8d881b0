package extract_test

import (
	"reflect"
	"testing"

	"asepack/internal/document"
	"asepack/internal/extract"
	"asepack/internal/testsupport"
)

func TestFileEmitsDefaultAnimationFirst(t *testing.T) {
	doc := testsupport.NewDocument("walk.aseprite", 4,
		document.Tag{Name: "walk", From: 0, To: 1},
		document.Tag{Name: "jump", From: 2, To: 3},
	)

	records, err := extract.File(doc)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if len(records.Animations) != 3 {
		t.Fatalf("expected 3 animations, got %d", len(records.Animations))
	}
	def := records.Animations[0]
	if def.Tag != "" {
		t.Fatalf("expected first animation to be the unnamed default, got %q", def.Tag)
	}
	if !reflect.DeepEqual(def.Frames, []int{0, 1, 2, 3}) {
		t.Fatalf("default animation should cover every frame in order, got %v", def.Frames)
	}
	if records.Animations[1].Tag != "walk" || records.Animations[2].Tag != "jump" {
		t.Fatalf("tag animations out of declaration order: %+v", records.Animations[1:])
	}
}

func TestFileTagRangesAreInclusive(t *testing.T) {
	doc := testsupport.NewDocument("run.aseprite", 5, document.Tag{Name: "run", From: 1, To: 3})

	records, err := extract.File(doc)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	run := records.Animations[1]
	if !reflect.DeepEqual(run.Frames, []int{1, 2, 3}) {
		t.Fatalf("expected inclusive range [1 2 3], got %v", run.Frames)
	}
}

func TestFileKeepsFrameOrderAndDurations(t *testing.T) {
	doc := testsupport.NewDocument("idle.aseprite", 3)
	doc.Frames[1].DurationMS = 250

	records, err := extract.File(doc)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if len(records.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(records.Frames))
	}
	for i, frame := range records.Frames {
		if frame.Index != i {
			t.Fatalf("frame %d carries index %d", i, frame.Index)
		}
		if frame.File != "idle.aseprite" {
			t.Fatalf("frame %d tagged with file %q", i, frame.File)
		}
	}
	if records.Frames[1].DurationMS != 250 {
		t.Fatalf("expected duration 250, got %d", records.Frames[1].DurationMS)
	}
}

func TestFileKeepsDuplicateTagNames(t *testing.T) {
	doc := testsupport.NewDocument("dup.aseprite", 4,
		document.Tag{Name: "loop", From: 0, To: 1},
		document.Tag{Name: "loop", From: 2, To: 3},
	)

	records, err := extract.File(doc)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	// Extraction keeps both; the index tie-break happens at materialization.
	if len(records.Animations) != 3 {
		t.Fatalf("expected default plus both duplicates, got %d animations", len(records.Animations))
	}
	if !reflect.DeepEqual(records.Animations[2].Frames, []int{2, 3}) {
		t.Fatalf("expected the later duplicate last, got %v", records.Animations[2].Frames)
	}
}

func TestFilePassesThroughTilesetsAndSlices(t *testing.T) {
	doc := testsupport.NewDocument("level.aseprite", 1)
	doc.Tilesets = append(doc.Tilesets, testsupport.NewTileset(7, "terrain", 3))
	doc.Slices = append(doc.Slices, document.Slice{Name: "hitbox"})

	records, err := extract.File(doc)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}

	if len(records.Tilesets) != 1 || records.Tilesets[0].ID != 7 || records.Tilesets[0].File != "level.aseprite" {
		t.Fatalf("unexpected tilesets: %+v", records.Tilesets)
	}
	if len(records.Slices) != 1 || records.Slices[0].Name != "hitbox" || records.Slices[0].File != "level.aseprite" {
		t.Fatalf("unexpected slices: %+v", records.Slices)
	}
}

func TestFileRejectsInvalidDocument(t *testing.T) {
	doc := testsupport.NewDocument("bad.aseprite", 2, document.Tag{Name: "run", From: 1, To: 0})

	if _, err := extract.File(doc); !document.IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
