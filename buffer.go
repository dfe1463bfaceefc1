package flywheel

// CellBuffer is a width x height grid of cells stored row-major, with
// per-row dirty tracking and a monotonically incrementing generation
// counter (§3 "CellBuffer"). It is the Go-native descendant of the teacher's
// tui.Buffer, generalized from a single flat Cells slice to track dirty rows
// so the differ (Flush) can skip untouched rows in O(changed_rows x w)
// instead of re-scanning the whole grid every frame.
type CellBuffer struct {
	width, height int
	cells         []Cell
	dirty         []bool
	generation    uint64
}

// NewCellBuffer creates a width x height buffer filled with empty cells.
func NewCellBuffer(width, height int) *CellBuffer {
	b := &CellBuffer{}
	b.Resize(width, height)
	return b
}

// Width returns the buffer's current width.
func (b *CellBuffer) Width() int { return b.width }

// Height returns the buffer's current height.
func (b *CellBuffer) Height() int { return b.height }

// Generation returns the buffer's current generation counter, bumped on
// every Resize and Clear.
func (b *CellBuffer) Generation() uint64 { return b.generation }

// Resize reallocates the grid to width x height. All cells become empty and
// all rows are marked dirty (§4.1).
func (b *CellBuffer) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	b.width = width
	b.height = height
	b.cells = make([]Cell, width*height)
	for i := range b.cells {
		b.cells[i] = emptyCell
	}
	b.dirty = make([]bool, height)
	for y := range b.dirty {
		b.dirty[y] = true
	}
	b.generation++
}

// Clear fills the buffer with the empty cell and marks all rows dirty
// (§4.1).
func (b *CellBuffer) Clear() {
	for i := range b.cells {
		b.cells[i] = emptyCell
	}
	for y := range b.dirty {
		b.dirty[y] = true
	}
	b.generation++
}

// inBounds reports whether (x, y) addresses a live cell.
func (b *CellBuffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Get returns the cell at (x, y), or the empty cell if out of bounds
// (§4.1).
func (b *CellBuffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return emptyCell
	}
	return b.cells[y*b.width+x]
}

// Set writes a cell at (x, y). Out-of-bounds writes are silent no-ops. The
// row is marked dirty only if the new value differs from the old one
// (§4.1).
func (b *CellBuffer) Set(x, y int, c Cell) {
	if !b.inBounds(x, y) {
		return
	}
	idx := y*b.width + x
	if b.cells[idx] == c {
		return
	}
	b.cells[idx] = c
	b.dirty[y] = true
}

// IsDirty reports whether row y is marked dirty.
func (b *CellBuffer) IsDirty(y int) bool {
	if y < 0 || y >= len(b.dirty) {
		return false
	}
	return b.dirty[y]
}

// clearDirty clears every row's dirty bit, called after a flush.
func (b *CellBuffer) clearDirty() {
	for y := range b.dirty {
		b.dirty[y] = false
	}
}

// markAllDirty marks every row dirty. Nothing calls it at present: flush
// walks every row itself when force_full_redraw is set.
func (b *CellBuffer) markAllDirty() {
	for y := range b.dirty {
		b.dirty[y] = true
	}
}

// FillRect fills the rectangle (x, y, w, h), clipped to the buffer bounds,
// with c (§4.1).
func (b *CellBuffer) FillRect(x, y, w, h int, c Cell) {
	x0, y0, x1, y1 := clipRect(x, y, w, h, b.width, b.height)
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			b.Set(col, row, c)
		}
	}
}

func clipRect(x, y, w, h, bw, bh int) (x0, y0, x1, y1 int) {
	x0, y0 = x, y
	x1, y1 = x+w, y+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > bw {
		x1 = bw
	}
	if y1 > bh {
		y1 = bh
	}
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return
}

// DrawText draws s starting at (x, y) with the given colors, clipping to
// the right edge of the buffer (§4.1, Open Question (a)).
func (b *CellBuffer) DrawText(x, y int, s string, fg, bg Color) int {
	return b.DrawTextClipped(x, y, s, fg, bg, b.width)
}

// DrawTextClipped draws s starting at (x, y), clipping to column limitX
// instead of the buffer's full width — the primitive stream.Widget uses to
// keep a run from spilling past its placement rectangle's right edge while
// still sharing CellBuffer's wide-glyph and control-stop rules. A
// column-width-2 glyph is written atomically with its sentinel cell; one
// landing with exactly one column of remaining space before limitX is
// skipped rather than truncated. Drawing stops at the first control
// character (\n, \r, \t, ESC) without advancing through it. Returns the
// number of columns actually written.
func (b *CellBuffer) DrawTextClipped(x, y int, s string, fg, bg Color, limitX int) int {
	if limitX > b.width {
		limitX = b.width
	}
	col := x
	written := 0
	for _, r := range s {
		if isControl(r) {
			break
		}
		if y < 0 || y >= b.height {
			break
		}
		w := runeWidth(r)
		if w == 0 {
			continue
		}
		if col >= limitX {
			break
		}
		if w == 2 {
			if col+1 >= limitX {
				// a 2-wide glyph straddling the edge is skipped, not
				// truncated into a single column.
				break
			}
			b.Set(col, y, Cell{Ch: r, Fg: fg, Bg: bg})
			b.Set(col+1, y, wideSentinel(bg))
			col += 2
			written += 2
			continue
		}
		b.Set(col, y, Cell{Ch: r, Fg: fg, Bg: bg})
		col++
		written++
	}
	return written
}
