// Package stream implements the append-oriented wrapping text view over an
// owned line ring described in §4.6 "StreamWidget". It has no direct
// ancestor in the teacher repo (basementui's render.go draws a parsed
// markdown AST, not a streaming log), so its shape is grounded instead on
// the teacher's Screen/Buffer split — a widget owns its own small buffer of
// content and is drawn into the engine's CellBuffer on demand, the same
// relationship Screen.Back has to the terminal.
package stream

import (
	"unicode/utf8"

	"github.com/ccheshirecat/flywheel"
)

// DefaultMaxLines and DefaultMaxLineCols bound the ring and per-line width
// when a Widget is constructed with NewWidget; New lets a caller override
// both.
const (
	DefaultMaxLines    = 10000
	DefaultMaxLineCols = 4096
)

// run is a contiguous span of same-colored text within a line.
type run struct {
	text string
	fg   flywheel.Color
	bg   flywheel.Color
}

// line is one logical line of the ring: a growable sequence of styled runs
// plus its total column width, maintained incrementally so append's fast
// path never has to re-measure the whole line.
type line struct {
	runs  []run
	width int
}

// Widget is a bounded ring of lines with an append-specialized fast path,
// soft-wrapping, and scroll-from-bottom viewing (§3 "StreamWidget state",
// §4.6).
type Widget struct {
	x, y, w, h int

	lines       []line
	maxLines    int
	maxLineCols int

	fg, bg       flywheel.Color
	scrollOffset int
}

// New creates a widget at the given placement rectangle with custom ring
// bounds.
func New(x, y, w, h, maxLines, maxLineCols int) *Widget {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	if maxLineCols <= 0 {
		maxLineCols = DefaultMaxLineCols
	}
	return &Widget{
		x: x, y: y, w: w, h: h,
		lines:       []line{{}},
		maxLines:    maxLines,
		maxLineCols: maxLineCols,
		fg:          flywheel.DefaultColor,
		bg:          flywheel.DefaultColor,
	}
}

// NewWidget creates a widget with the default ring bounds.
func NewWidget(x, y, w, h int) *Widget {
	return New(x, y, w, h, DefaultMaxLines, DefaultMaxLineCols)
}

// SetFg sets the pen foreground for subsequent appends; existing runs are
// unaffected (§4.6).
func (s *Widget) SetFg(c flywheel.Color) { s.fg = c }

// SetBg sets the pen background for subsequent appends; existing runs are
// unaffected (§4.6).
func (s *Widget) SetBg(c flywheel.Color) { s.bg = c }

// Pen returns the current append color, per SPEC_FULL.md §13's
// introspection addition.
func (s *Widget) Pen() (fg, bg flywheel.Color) { return s.fg, s.bg }

// LineCount returns the number of lines currently in the ring.
func (s *Widget) LineCount() int { return len(s.lines) }

// Clear drops all lines, resets scroll offset and the pen (§4.6).
func (s *Widget) Clear() {
	s.lines = []line{{}}
	s.scrollOffset = 0
	s.fg = flywheel.DefaultColor
	s.bg = flywheel.DefaultColor
}

func (s *Widget) tail() *line {
	return &s.lines[len(s.lines)-1]
}

// Append adds text to the stream. It returns 1 if the fast path was taken,
// 0 for the slow path, matching flywheel_stream_append's contract (§4.6,
// §6, §9 "Fast path for streaming").
func (s *Widget) Append(text string) int {
	if s.scrollOffset == 0 && isFastPathEligible(text) {
		if s.tail().width+len(text) <= s.maxLineCols {
			s.appendRunFast(text)
			return 1
		}
	}
	s.appendSlow(text)
	return 0
}

// isFastPathEligible reports whether text is pure ASCII printable with no
// control bytes: the set of bytes where one byte is always one column and
// none can trigger a newline, tab expansion, or wrap-at-glyph-boundary
// special case.
func isFastPathEligible(text string) bool {
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b < 0x20 || b > 0x7e {
			return false
		}
	}
	return true
}

// appendRunFast extends the tail line with a single styled run using the
// current pen, merging into the previous run when the color matches so a
// long streamed token sequence doesn't fragment into one run per token.
func (s *Widget) appendRunFast(text string) {
	t := s.tail()
	if n := len(t.runs); n > 0 && t.runs[n-1].fg == s.fg && t.runs[n-1].bg == s.bg {
		t.runs[n-1].text += text
	} else {
		t.runs = append(t.runs, run{text: text, fg: s.fg, bg: s.bg})
	}
	t.width += len(text)
}

// appendSlow handles newlines, wrapping, tab expansion, control-byte
// discarding, and UTF-8 decoding (with U+FFFD replacement: each maximal
// ill-formed subsequence, i.e. an invalid byte plus any following bytes that
// still form a prefix of a valid encoding, becomes exactly one U+FFFD, per
// §8 property 6).
func (s *Widget) appendSlow(text string) {
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			for size < len(text)-i && !utf8.FullRuneInString(text[i:i+size+1]) {
				size++
			}
		}
		i += size
		switch r {
		case '\n':
			s.pushLine()
		case '\r':
			// discarded: only \n starts a new line (§4.6).
		case '\t':
			s.appendTab()
		default:
			if r < 0x20 || r == 0x7f {
				continue // other control bytes are discarded
			}
			s.appendGlyph(r)
		}
	}
}

// pushLine starts a new write-head line, dropping the oldest line if the
// ring is already at max_lines (§3 invariant, §4.6).
func (s *Widget) pushLine() {
	if len(s.lines) >= s.maxLines {
		s.lines = s.lines[1:]
	}
	s.lines = append(s.lines, line{})
	s.clampScroll()
}

func (s *Widget) appendTab() {
	t := s.tail()
	n := 8 - t.width%8
	for i := 0; i < n; i++ {
		s.appendGlyph(' ')
	}
}

// appendGlyph appends one printable, non-zero-width rune to the tail line,
// wrapping first if it would overflow max_line_cols. A wide glyph that
// would straddle the boundary begins the next line instead of splitting
// across it (§4.6 "non-breaking").
func (s *Widget) appendGlyph(r rune) {
	w := runeWidth(r)
	if w == 0 {
		return
	}
	t := s.tail()
	if t.width+w > s.maxLineCols {
		s.pushLine()
		t = s.tail()
	}
	text := string(r)
	if n := len(t.runs); n > 0 && t.runs[n-1].fg == s.fg && t.runs[n-1].bg == s.bg {
		t.runs[n-1].text += text
	} else {
		t.runs = append(t.runs, run{text: text, fg: s.fg, bg: s.bg})
	}
	t.width += w
}

// ScrollUp moves the view up (toward older lines) by n, saturating at the
// top (§4.6).
func (s *Widget) ScrollUp(n int) {
	s.scrollOffset += n
	s.clampScroll()
}

// ScrollDown moves the view down (toward the tail) by n, saturating at 0
// (§4.6).
func (s *Widget) ScrollDown(n int) {
	s.scrollOffset -= n
	s.clampScroll()
}

// clampScroll keeps scrollOffset in [0, max(0, lineCount - h)] (§8 property
// 7).
func (s *Widget) clampScroll() {
	max := len(s.lines) - s.h
	if max < 0 {
		max = 0
	}
	if s.scrollOffset < 0 {
		s.scrollOffset = 0
	}
	if s.scrollOffset > max {
		s.scrollOffset = max
	}
}

// ScrollOffset returns the current scroll-from-bottom offset.
func (s *Widget) ScrollOffset() int { return s.scrollOffset }

// Render draws the last h visible lines, offset by scroll_offset, into the
// widget's rectangle on the engine's back buffer. Lines shorter than w are
// padded with empty cells using the current background. When scrolled up, a
// "more below" marker inverts the bottom-right cell (§4.6).
//
// A line ring always ends in a write-head line that holds whatever comes
// after the most recent newline; until something is appended to it, it is
// empty and not yet a rendered line in its own right (§8 S4: appending
// "a\nb\nc\n" leaves a 4-line ring but renders "b" and "c", not "c" and a
// blank row), so it is excluded from the bottom anchor whenever it is still
// empty.
func (s *Widget) Render(e *flywheel.Engine) {
	total := len(s.lines)
	visible := total
	if visible > 1 && s.lines[visible-1].width == 0 {
		visible--
	}
	bottomIdx := visible - 1 - s.scrollOffset
	for row := s.h - 1; row >= 0; row-- {
		li := bottomIdx - (s.h - 1 - row)
		screenY := s.y + row
		col := s.x
		if li >= 0 && li < visible {
			for _, rn := range s.lines[li].runs {
				col += e.DrawTextAt(col, screenY, rn.text, rn.fg, rn.bg, s.x+s.w)
			}
		}
		for col < s.x+s.w {
			e.SetCell(col, screenY, ' ', flywheel.DefaultColor, s.bg)
			col++
		}
	}
	if s.scrollOffset > 0 && s.h > 0 && s.w > 0 {
		mx, my := s.x+s.w-1, s.y+s.h-1
		c := e.GetCell(mx, my)
		e.SetCell(mx, my, c.Ch, c.Bg, c.Fg)
	}
}

func runeWidth(r rune) int {
	// Delegates to the same column-width notion the core CellBuffer uses,
	// so a line's width here always matches what draw_text would produce.
	return flywheel.RuneWidth(r)
}
