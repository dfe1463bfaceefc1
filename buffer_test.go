package flywheel

import "testing"

func TestCellBufferSetGet(t *testing.T) {
	b := NewCellBuffer(10, 5)
	if len(b.cells) != 50 {
		t.Errorf("expected 50 cells, got %d", len(b.cells))
	}

	b.Set(0, 0, Cell{Ch: 'a', Fg: DefaultColor, Bg: DefaultColor})
	c := b.Get(0, 0)
	if c.Ch != 'a' {
		t.Errorf("set/get failed, got %q", c.Ch)
	}
}

func TestCellBufferOutOfBounds(t *testing.T) {
	b := NewCellBuffer(4, 4)
	b.Set(-1, 0, Cell{Ch: 'x'})
	b.Set(0, -1, Cell{Ch: 'x'})
	b.Set(4, 0, Cell{Ch: 'x'})
	b.Set(0, 4, Cell{Ch: 'x'})

	if c := b.Get(-1, 0); c != emptyCell {
		t.Errorf("out-of-bounds Get should return the empty cell")
	}
}

func TestCellBufferResizePreservesNothingAndMarksDirty(t *testing.T) {
	b := NewCellBuffer(10, 10)
	b.Set(0, 0, Cell{Ch: 'x'})

	b.Resize(5, 5)
	if b.Width() != 5 || b.Height() != 5 {
		t.Errorf("resize failed: got %dx%d", b.Width(), b.Height())
	}
	if b.Get(0, 0).Ch != ' ' {
		t.Errorf("resize should reset cells to empty")
	}
	for y := 0; y < b.Height(); y++ {
		if !b.IsDirty(y) {
			t.Errorf("row %d should be dirty after resize", y)
		}
	}
}

func TestCellBufferSetOnlyDirtiesOnChange(t *testing.T) {
	b := NewCellBuffer(4, 4)
	b.clearDirty()

	b.Set(0, 0, emptyCell)
	if b.IsDirty(0) {
		t.Errorf("setting the same value should not dirty the row")
	}

	b.Set(0, 0, Cell{Ch: 'x', Fg: DefaultColor, Bg: DefaultColor})
	if !b.IsDirty(0) {
		t.Errorf("setting a new value should dirty the row")
	}
}

func TestFillRectClips(t *testing.T) {
	b := NewCellBuffer(5, 5)
	b.FillRect(-2, -2, 4, 4, Cell{Ch: '#'})
	if b.Get(0, 0).Ch != '#' || b.Get(1, 1).Ch != '#' {
		t.Errorf("FillRect should clip to the visible rectangle, not skip it entirely")
	}
	if b.Get(2, 2).Ch == '#' {
		t.Errorf("FillRect should not fill past its clipped bounds")
	}
}

func TestDrawTextClipsAtRightEdge(t *testing.T) {
	b := NewCellBuffer(5, 1)
	n := b.DrawText(3, 0, "hello", DefaultColor, DefaultColor)
	if n != 2 {
		t.Errorf("expected 2 columns written before clipping, got %d", n)
	}
}

func TestDrawTextStopsAtControlChar(t *testing.T) {
	b := NewCellBuffer(10, 1)
	n := b.DrawText(0, 0, "ab\ncd", DefaultColor, DefaultColor)
	if n != 2 {
		t.Errorf("expected draw to stop at \\n, wrote %d columns", n)
	}
}

func TestDrawTextWideGlyphWritesSentinel(t *testing.T) {
	b := NewCellBuffer(10, 1)
	n := b.DrawText(0, 0, "中", DefaultColor, DefaultColor) // U+4E2D, width 2
	if n != 2 {
		t.Errorf("expected a width-2 glyph to report 2 columns, got %d", n)
	}
	if b.Get(0, 0).Ch != '中' {
		t.Errorf("glyph not written at its origin column")
	}
	if b.Get(1, 0).Ch != 0 {
		t.Errorf("sentinel column should have Ch == 0, got %q", b.Get(1, 0).Ch)
	}
}

func TestDrawTextSkipsWideGlyphStraddlingLimit(t *testing.T) {
	b := NewCellBuffer(10, 1)
	n := b.DrawTextClipped(0, 0, "中", DefaultColor, DefaultColor, 1)
	if n != 0 {
		t.Errorf("a wide glyph with only one free column should be skipped, not truncated, got %d", n)
	}
}
