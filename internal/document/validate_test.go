package document_test

import (
	"testing"

	"asepack/internal/document"
	"asepack/internal/testsupport"
)

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	doc := testsupport.NewDocument("walk.aseprite", 3, document.Tag{Name: "walk", From: 0, To: 2})
	doc.Tilesets = append(doc.Tilesets, testsupport.NewTileset(0, "terrain", 4))

	if err := doc.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidateRejectsEmptyDocument(t *testing.T) {
	doc := &document.Document{Name: "empty.aseprite"}
	err := doc.Validate()
	if err == nil {
		t.Fatal("expected error for document without frames")
	}
	if !document.IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestValidateRejectsFrameWithoutImage(t *testing.T) {
	doc := testsupport.NewDocument("broken.aseprite", 2)
	doc.Frames[1].Image = nil

	if err := doc.Validate(); !document.IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestValidateRejectsTagOutsideFrameRange(t *testing.T) {
	doc := testsupport.NewDocument("tags.aseprite", 2, document.Tag{Name: "run", From: 0, To: 5})

	if err := doc.Validate(); !document.IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestValidateRejectsInvertedTagRange(t *testing.T) {
	doc := testsupport.NewDocument("tags.aseprite", 3, document.Tag{Name: "run", From: 2, To: 0})

	if err := doc.Validate(); !document.IsDecodeError(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestValidateRejectsMalformedTilesets(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*document.Tileset)
	}{
		{"missing image", func(ts *document.Tileset) { ts.Image = nil }},
		{"zero tiles", func(ts *document.Tileset) { ts.TileCount = 0 }},
		{"invalid tile size", func(ts *document.Tileset) { ts.TileWidth = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testsupport.NewDocument("tiles.aseprite", 1)
			ts := testsupport.NewTileset(0, "terrain", 2)
			tc.mutate(&ts)
			doc.Tilesets = append(doc.Tilesets, ts)

			if err := doc.Validate(); !document.IsDecodeError(err) {
				t.Fatalf("expected decode error, got %v", err)
			}
		})
	}
}
