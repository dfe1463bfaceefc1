package flywheel

import (
	"errors"
	"testing"
	"time"
)

// newTestEngine builds a Running engine over in-memory buffers with no
// termIO/input.Reader, the same way buffer_test.go pokes CellBuffer's
// private fields directly rather than going through New (which requires a
// real tty).
func newTestEngine(w, h int) *Engine {
	return &Engine{
		state:  StateRunning,
		front:  NewCellBuffer(w, h),
		back:   NewCellBuffer(w, h),
		width:  w,
		height: h,
		pacer:  newPacer(DefaultFrameRate),
		logger: nopLogger{},
	}
}

func TestBeginFrameAppliesPendingResizeAndForcesFullRedraw(t *testing.T) {
	e := newTestEngine(80, 24)
	e.forceFullRedraw = false

	e.HandleResize(100, 30)
	e.BeginFrame()

	if e.Width() != 100 || e.Height() != 30 {
		t.Errorf("expected engine to resize to 100x30, got %dx%d", e.Width(), e.Height())
	}
	if e.front.Width() != 100 || e.back.Width() != 100 {
		t.Errorf("expected both buffers to be resized to the new width")
	}
	if !e.forceFullRedraw {
		t.Errorf("a resize should force a full redraw on the next end_frame (§8 S2)")
	}
}

func TestBeginFrameNoopWithoutPendingResize(t *testing.T) {
	e := newTestEngine(80, 24)
	e.forceFullRedraw = false
	e.BeginFrame()
	if e.forceFullRedraw {
		t.Errorf("begin_frame without a pending resize should not force a redraw")
	}
}

type stubWriter struct {
	writes  int
	lastLen int
	err     error
}

func (s *stubWriter) Write(p []byte) (int, error) {
	s.writes++
	s.lastLen = len(p)
	if s.err != nil {
		return 0, s.err
	}
	return len(p), nil
}

func TestEndFramePacerDropsFrameBeforeIntervalElapses(t *testing.T) {
	e := newTestEngine(5, 1)
	w := &stubWriter{}
	e.writer = w

	now := time.Unix(0, 0)
	e.pacer.now = func() time.Time { return now }
	e.pacer.last = now // freshly "flushed" so the next call is not yet due

	e.back.Set(0, 0, Cell{Ch: 'x', Fg: DefaultColor, Bg: DefaultColor})
	e.EndFrame()

	if w.writes != 0 {
		t.Errorf("a frame arriving before the pacer interval should be dropped, got %d writes", w.writes)
	}
	if e.back.Get(0, 0).Ch != 'x' {
		t.Errorf("a dropped frame must retain its back buffer content for the next frame")
	}
}

func TestEndFrameFlushesOncePacerIsDue(t *testing.T) {
	e := newTestEngine(5, 1)
	w := &stubWriter{}
	e.writer = w

	now := time.Unix(0, 0)
	e.pacer.now = func() time.Time { return now }
	e.pacer.last = time.Time{} // zero value: always due

	e.back.Set(0, 0, Cell{Ch: 'x', Fg: DefaultColor, Bg: DefaultColor})
	e.EndFrame()

	if w.writes != 1 {
		t.Errorf("expected exactly one write once the pacer is due, got %d", w.writes)
	}
	if e.front.Get(0, 0).Ch != 'x' {
		t.Errorf("expected the back buffer to become the front buffer after a successful flush")
	}
}

func TestEndFrameWriteFailureEntersStoppingWithOneShotError(t *testing.T) {
	e := newTestEngine(5, 1)
	w := &stubWriter{err: errors.New("broken pipe")}
	e.writer = w
	e.pacer.last = time.Time{}

	e.back.Set(0, 0, Cell{Ch: 'x', Fg: DefaultColor, Bg: DefaultColor})
	e.EndFrame()

	if e.state != StateStopping {
		t.Errorf("a write failure should move the engine to Stopping, got %v", e.state)
	}
	if e.LastError() == nil {
		t.Errorf("expected LastError to be recorded after a write failure")
	}

	ev := e.PollEvent()
	if ev.Type != EventError {
		t.Errorf("first poll_event after a write failure should report EventError, got %v", ev.Type)
	}
	ev = e.PollEvent()
	if ev.Type != EventNone {
		t.Errorf("second poll_event after the one-shot error should report EventNone, got %v", ev.Type)
	}
	ev = e.PollEvent()
	if ev.Type != EventNone {
		t.Errorf("poll_event should keep reporting EventNone once Stopping's one-shot is consumed")
	}
}

func TestStopTransitionsRunningToStopping(t *testing.T) {
	e := newTestEngine(5, 1)
	e.Stop()
	if e.state != StateStopping {
		t.Errorf("Stop should move a Running engine to Stopping, got %v", e.state)
	}
}

func TestPollEventAlwaysNoneWhenStopped(t *testing.T) {
	e := newTestEngine(5, 1)
	e.state = StateStopped
	if ev := e.PollEvent(); ev.Type != EventNone {
		t.Errorf("a Stopped engine should always report EventNone, got %v", ev.Type)
	}
}

func TestDrawPrimitivesAreNoOpsWhenNotRunning(t *testing.T) {
	e := newTestEngine(5, 1)
	e.state = StateStopping
	e.SetCell(0, 0, 'x', DefaultColor, DefaultColor)
	if e.GetCell(0, 0).Ch == 'x' {
		t.Errorf("set_cell should be a no-op once the engine has left Running")
	}
}

func TestCloseIsIdempotentWithoutATerminal(t *testing.T) {
	e := newTestEngine(5, 1)
	e.Close()
	if e.state != StateStopped {
		t.Errorf("Close should move the engine to Stopped, got %v", e.state)
	}
	e.Close() // must not panic on a nil termIO the second time either
}
