package stream

import (
	"strings"
	"testing"

	flywheel "github.com/ccheshirecat/flywheel"
)

func TestAppendFastPath(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	if got := w.Append("hello"); got != 1 {
		t.Errorf("pure ASCII text fitting on the tail line should take the fast path, got %d", got)
	}
	if w.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", w.LineCount())
	}
}

func TestAppendSlowPathOnNewline(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	if got := w.Append("a\nb"); got != 0 {
		t.Errorf("text containing a newline should take the slow path, got %d", got)
	}
	if w.LineCount() != 2 {
		t.Errorf("expected 2 lines after one newline, got %d", w.LineCount())
	}
}

func TestAppendTabExpandsToNextMultipleOfEight(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	w.Append("ab\tc")
	line := w.lines[0]
	if line.width != 9 {
		t.Errorf("expected tab to pad width 2 up to 8 then add 'c', total 9, got %d", line.width)
	}
}

func TestAppendDropsCarriageReturn(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	w.Append("a\rb")
	if w.LineCount() != 1 {
		t.Errorf("\\r should not start a new line, got %d lines", w.LineCount())
	}
}

func TestAppendWrapsAtMaxLineCols(t *testing.T) {
	w := New(0, 0, 5, 5, 10, 4)
	w.Append("abcdefgh")
	if w.LineCount() != 2 {
		t.Errorf("an 8-char append into a 4-col-max widget should wrap into 2 lines, got %d", w.LineCount())
	}
}

func TestAppendWideGlyphDoesNotSplitAcrossWrap(t *testing.T) {
	w := New(0, 0, 5, 5, 10, 3)
	w.Append("ab中")
	// "ab" fills columns 0-1; "中" needs 2 columns but only 1 remains, so it
	// must start the next line rather than straddling the boundary.
	if w.lines[0].width != 2 {
		t.Errorf("expected the first line to stop at width 2, got %d", w.lines[0].width)
	}
	if w.LineCount() != 2 {
		t.Errorf("expected the wide glyph to wrap onto its own line, got %d lines", w.LineCount())
	}
}

func TestPushLineDropsOldestWhenRingFull(t *testing.T) {
	w := New(0, 0, 5, 5, 2, 80)
	w.Append("a\nb\nc")
	if w.LineCount() != 2 {
		t.Errorf("ring bounded to 2 lines should drop the oldest, got %d lines", w.LineCount())
	}
}

func TestScrollClampsToBounds(t *testing.T) {
	w := New(0, 0, 5, 3, 80, 80)
	for i := 0; i < 10; i++ {
		w.Append("line\n")
	}
	w.ScrollUp(1000)
	if w.ScrollOffset() != w.LineCount()-3 {
		t.Errorf("scroll up should clamp at lineCount-height, got %d", w.ScrollOffset())
	}
	w.ScrollDown(1000)
	if w.ScrollOffset() != 0 {
		t.Errorf("scroll down should clamp at 0, got %d", w.ScrollOffset())
	}
}

func TestSetFgBgAffectOnlySubsequentAppends(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	w.Append("a")
	w.SetFg(flywheel.RGB(1, 2, 3))
	w.Append("b")

	runs := w.lines[0].runs
	if len(runs) != 2 {
		t.Errorf("expected two distinct runs after a color change, got %d", len(runs))
	}
	if !runs[0].fg.IsDefault() {
		t.Errorf("first run should keep the original default color")
	}
	if runs[1].fg != flywheel.RGB(1, 2, 3) {
		t.Errorf("second run should use the newly set color")
	}
}

func TestAppendCoalescesRunsWithSamePen(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	w.Append("foo")
	w.Append("bar")
	if len(w.lines[0].runs) != 1 {
		t.Errorf("consecutive appends with an unchanged pen should merge into one run, got %d", len(w.lines[0].runs))
	}
	if w.lines[0].runs[0].text != "foobar" {
		t.Errorf("expected merged run text \"foobar\", got %q", w.lines[0].runs[0].text)
	}
}

func TestAppendReplacesInvalidUTF8WithReplacementChar(t *testing.T) {
	w := NewWidget(0, 0, 20, 5)
	w.Append("a\xffb") // \xff alone is not valid UTF-8 and forces the slow path
	text := strings.Join(runTexts(w.lines[0].runs), "")
	if !strings.Contains(text, "�") {
		t.Errorf("expected a U+FFFD replacement for the invalid byte, got %q", text)
	}
}

func runTexts(runs []run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.text
	}
	return out
}

// rowText reads back the visible row at screenY by scanning the engine's
// back buffer over the widget's column span.
func rowText(e *flywheel.Engine, x, w, screenY int) string {
	var b strings.Builder
	for col := x; col < x+w; col++ {
		c := e.GetCell(col, screenY)
		if c.Ch == 0 {
			continue
		}
		b.WriteRune(c.Ch)
	}
	return strings.TrimRight(b.String(), " ")
}

// TestRenderScenarioS4 matches spec.md §8 S4 exactly: appending "a\nb\nc\n"
// to an empty (0,0,10,2) widget leaves a 4-line ring (including the empty
// write-head line) but renders "b" on top and "c" on the bottom, not "c"
// and a blank row.
func TestRenderScenarioS4(t *testing.T) {
	w := NewWidget(0, 0, 10, 2)
	w.Append("a\nb\nc\n")
	if w.LineCount() != 4 {
		t.Errorf("expected a 4-line ring including the empty head, got %d", w.LineCount())
	}

	e := flywheel.NewHeadless(10, 2)
	w.Render(e)

	if got := rowText(e, 0, 10, 0); got != "b" {
		t.Errorf("expected top row \"b\", got %q", got)
	}
	if got := rowText(e, 0, 10, 1); got != "c" {
		t.Errorf("expected bottom row \"c\", got %q", got)
	}
}

func TestRenderPadsShortLinesWithBackground(t *testing.T) {
	w := NewWidget(0, 0, 6, 1)
	w.Append("hi")

	e := flywheel.NewHeadless(6, 1)
	w.Render(e)

	for col := 2; col < 6; col++ {
		if c := e.GetCell(col, 0); c.Ch != ' ' {
			t.Errorf("expected column %d padded with a space, got %q", col, c.Ch)
		}
	}
}

func TestRenderScrolledUpInvertsBottomRightMarker(t *testing.T) {
	w := New(0, 0, 5, 2, 80, 80)
	w.SetBg(flywheel.RGB(10, 20, 30)) // distinct from the default fg/bg so the swap is observable
	for i := 0; i < 10; i++ {
		w.Append("line\n")
	}
	w.ScrollUp(3)

	e := flywheel.NewHeadless(5, 2)
	w.Render(e)

	fg, bg := w.fg, w.bg
	c := e.GetCell(4, 1)
	if c.Fg != bg || c.Bg != fg {
		t.Errorf("scrolled-up render should invert the bottom-right cell's fg/bg, got fg=%v bg=%v", c.Fg, c.Bg)
	}
}

func TestRenderSingleEmptyLineShowsNothingWithoutPanicking(t *testing.T) {
	w := NewWidget(0, 0, 5, 2)
	e := flywheel.NewHeadless(5, 2)
	w.Render(e) // a widget with only its initial empty line must not panic

	if got := rowText(e, 0, 5, 1); got != "" {
		t.Errorf("expected an untouched widget's bottom row to be blank, got %q", got)
	}
}
