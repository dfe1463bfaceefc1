package flywheel

import "github.com/unilibs/uniwidth"

// Cell is a single grid element: a character plus its foreground and
// background color (§3 "Cell").
type Cell struct {
	Ch rune
	Fg Color
	Bg Color
}

// emptyCell is the space character with default fg/bg, per §3.
var emptyCell = Cell{Ch: ' ', Fg: DefaultColor, Bg: DefaultColor}

// wideSentinel is the zero-width cell that follows a column-width-2 glyph;
// the differ treats it as covered by the glyph to its left (§3 invariant).
func wideSentinel(bg Color) Cell {
	return Cell{Ch: 0, Fg: DefaultColor, Bg: bg}
}

// runeWidth returns the column width of r: 0, 1, or 2. Width accounting only
// (uniwidth.RuneWidth), never grapheme clustering — per the Non-goal in §1.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// RuneWidth is runeWidth exported for consumers outside this package, such
// as stream.Widget's wrap accounting, which must agree exactly with what
// draw_text will do with the same rune.
func RuneWidth(r rune) int {
	return runeWidth(r)
}

// isControl reports whether r is one of the control characters draw_text
// must stop at without advancing through it (§4.1).
func isControl(r rune) bool {
	switch r {
	case '\n', '\r', '\t', 0x1b:
		return true
	default:
		return r < 0x20
	}
}
