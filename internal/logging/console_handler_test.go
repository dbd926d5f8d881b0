package logging

import (
	"io"
	"log/slog"
	"testing"
)

func TestDerivedConsoleHandlersShareWriterLock(t *testing.T) {
	base := newConsoleHandler(io.Discard, new(slog.LevelVar), false).(*consoleHandler)

	withAttrs := base.WithAttrs([]slog.Attr{slog.String("k", "v")}).(*consoleHandler)
	if withAttrs.mu != base.mu {
		t.Fatal("WithAttrs clone must share the writer lock")
	}

	withGroup := base.WithGroup("g").(*consoleHandler)
	if withGroup.mu != base.mu {
		t.Fatal("WithGroup clone must share the writer lock")
	}

	chained := withAttrs.WithGroup("g2").(*consoleHandler)
	if chained.mu != base.mu {
		t.Fatal("chained clones must share the writer lock")
	}
}
