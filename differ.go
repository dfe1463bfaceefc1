package flywheel

import "strconv"

// CoalesceGap is the default maximum run of identical cells that is still
// cheaper to emit verbatim than to break for a new cursor-position command
// (§4.2 "Coalesce adjacent runs").
const CoalesceGap = 3

// pen tracks the currently active SGR state across the whole frame,
// persisting between runs and rows (§4.2, §9 "Pen state across runs"): a
// long streaming line sharing one color costs one SGR total, not one per
// coalesced run.
type pen struct {
	active bool
	fg, bg Color
}

// flush walks (prev, curr) and appends the minimal ANSI byte stream to dst
// that transforms the terminal from prev to curr, honoring forceFull and
// coalesceGap. It returns the extended dst; callers reuse the backing array
// across frames (it is reset to dst[:0] before each call) so a frame never
// allocates on the happy path.
//
// hideCursor controls whether the cursor is left hidden after the flush
// (engines running in "hidden cursor" mode never emit the trailing
// show-cursor).
func flush(dst []byte, prev, curr *CellBuffer, forceFull bool, hideCursor bool, coalesceGap int) []byte {
	if coalesceGap <= 0 {
		coalesceGap = CoalesceGap
	}
	w, h := curr.width, curr.height

	var p pen
	curX, curY := -1, -1
	wrote := false

	if forceFull {
		dst = append(dst, "\x1b[?25l\x1b[2J\x1b[H"...)
		curX, curY = 0, 0
	}

	for y := 0; y < h; y++ {
		if !forceFull && !curr.IsDirty(y) {
			continue
		}
		x := 0
		for x < w {
			idx := y*w + x
			same := !forceFull && curr.cells[idx] == prev.cells[idx]
			if same {
				x++
				continue
			}

			// Start (or continue, if within coalesceGap of the previous
			// run) a run of differing cells.
			if curX != x || curY != y {
				dst = appendCursorPos(dst, y+1, x+1)
				curX, curY = x, y
			}

			for x < w {
				idx := y*w + x
				if !forceFull && curr.cells[idx] == prev.cells[idx] {
					// Look ahead: is this the start of a short identical
					// gap we should bridge, or the end of the run?
					gapEnd := x
					for gapEnd < w && gapEnd-x < coalesceGap && curr.cells[y*w+gapEnd] == prev.cells[y*w+gapEnd] {
						gapEnd++
					}
					bridgeable := gapEnd-x <= coalesceGap && gapEnd < w &&
						(forceFull || curr.cells[y*w+gapEnd] != prev.cells[y*w+gapEnd])
					if !bridgeable {
						break
					}
					for ; x < gapEnd; x++ {
						c := curr.cells[y*w+x]
						dst, curX = emitCell(dst, &p, c, curX)
					}
					continue
				}
				c := curr.cells[idx]
				dst, curX = emitCell(dst, &p, c, curX)
				x++
				wrote = true
			}
		}
	}

	if wrote || forceFull {
		if p.active {
			dst = append(dst, "\x1b[0m"...)
		}
		if !hideCursor {
			dst = append(dst, "\x1b[?25h"...)
		}
	}

	return dst
}

// emitCell appends the SGR (if the pen changed) and character bytes for c,
// advancing the tracked cursor column.
func emitCell(dst []byte, p *pen, c Cell, curX int) ([]byte, int) {
	if !p.active || p.fg != c.Fg || p.bg != c.Bg {
		if p.active {
			dst = append(dst, "\x1b[0m"...)
		}
		dst = append(dst, "\x1b["...)
		wroteAny := false
		if !c.Fg.IsDefault() {
			dst = c.Fg.appendSGR(dst, true)
			wroteAny = true
		}
		if !c.Bg.IsDefault() {
			if wroteAny {
				dst = append(dst, ';')
			}
			dst = c.Bg.appendSGR(dst, false)
			wroteAny = true
		}
		if !wroteAny {
			dst = dst[:len(dst)-2] // drop the bare "\x1b["
		} else {
			dst = append(dst, 'm')
		}
		p.fg, p.bg = c.Fg, c.Bg
		p.active = true
	}
	if c.Ch != 0 {
		dst = appendRune(dst, c.Ch)
	}
	// A sentinel cell (Ch == 0) covering a wide glyph draws no bytes, but
	// the terminal's own cursor already moved into this column when it
	// rendered the double-width glyph to its left, so the tracked column
	// advances here regardless.
	return dst, curX + 1
}

func appendRune(dst []byte, r rune) []byte {
	var buf [4]byte
	n := encodeRune(buf[:], r)
	return append(dst, buf[:n]...)
}

// encodeRune is a tiny UTF-8 encoder so the hot path doesn't allocate via
// string(r) conversions.
func encodeRune(buf []byte, r rune) int {
	switch {
	case r < 0x80:
		buf[0] = byte(r)
		return 1
	case r < 0x800:
		buf[0] = byte(0xC0 | r>>6)
		buf[1] = byte(0x80 | r&0x3F)
		return 2
	case r < 0x10000:
		buf[0] = byte(0xE0 | r>>12)
		buf[1] = byte(0x80 | (r>>6)&0x3F)
		buf[2] = byte(0x80 | r&0x3F)
		return 3
	default:
		buf[0] = byte(0xF0 | r>>18)
		buf[1] = byte(0x80 | (r>>12)&0x3F)
		buf[2] = byte(0x80 | (r>>6)&0x3F)
		buf[3] = byte(0x80 | r&0x3F)
		return 4
	}
}

// appendCursorPos appends the ANSI cursor-position command CSI row;colH,
// mirroring the teacher's writeCursorPos but onto a caller-owned slice.
func appendCursorPos(dst []byte, row, col int) []byte {
	dst = append(dst, "\x1b["...)
	dst = strconv.AppendInt(dst, int64(row), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col), 10)
	dst = append(dst, 'H')
	return dst
}
