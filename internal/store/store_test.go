package store_test

import (
	"testing"

	"asepack/internal/store"
)

func TestInsertIssuesDistinctValidHandles(t *testing.T) {
	assets := store.NewAssets[string]()

	a := assets.Insert("atlas")
	b := assets.Insert("animation")

	if !a.Valid() || !b.Valid() {
		t.Fatalf("handles must be valid, got %d and %d", a, b)
	}
	if a == b {
		t.Fatal("handles must be distinct")
	}
	if assets.Len() != 2 {
		t.Fatalf("expected 2 stored values, got %d", assets.Len())
	}
}

func TestGetReturnsStoredValue(t *testing.T) {
	assets := store.NewAssets[int]()
	h := assets.Insert(7)

	value, ok := assets.Get(h)
	if !ok || value != 7 {
		t.Fatalf("expected (7, true), got (%d, %v)", value, ok)
	}
	if _, ok := assets.Get(h + 1); ok {
		t.Fatal("unknown handle must miss")
	}
	if _, ok := assets.Get(0); ok {
		t.Fatal("the zero handle is never issued")
	}
}

func TestRangeVisitsEveryValueAndStops(t *testing.T) {
	assets := store.NewAssets[int]()
	for i := 0; i < 5; i++ {
		assets.Insert(i)
	}

	visited := 0
	assets.Range(func(store.Handle, int) bool {
		visited++
		return true
	})
	if visited != 5 {
		t.Fatalf("expected 5 visits, got %d", visited)
	}

	visited = 0
	assets.Range(func(store.Handle, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Fatalf("expected Range to stop after the first value, got %d visits", visited)
	}
}
