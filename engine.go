// Package flywheel is a terminal compositor: a double-buffered cell grid
// with diff-based flushing, a frame-paced render loop, and (in the stream
// subpackage) a streaming text widget, per spec.md §1-§2. Engine is the Go
// descendant of the teacher's tui.Screen: it keeps the same front/back
// buffer split and Frame-style draw-then-flush discipline, generalized from
// a mutex-guarded multi-goroutine design into the single-owner-task model
// §5 calls for, with force_full_redraw, frame pacing, and a typed input/
// resize/shutdown event stream layered on top.
package flywheel

import (
	"github.com/ccheshirecat/flywheel/config"
	"github.com/ccheshirecat/flywheel/input"
	"github.com/ccheshirecat/flywheel/term"
)

// State is the engine's lifecycle state (§4.6 "State machine (engine)").
type State int

const (
	StateInitializing State = iota
	StateRunning
	StateStopping
	StateStopped
)

// Logger is the minimal sink Engine reports non-fatal conditions to. New and
// NewHeadless install a no-op logger so nothing is ever written over the
// alternate screen unless a host wires one in.
type Logger interface {
	Printf(format string, args ...any)
}

// Writer is the minimal sink EndFrame writes a flushed frame's bytes to;
// *term.IO satisfies it. Kept as its own seam (distinct from the termIO
// field, which also drives resize polling and teardown) so tests can
// substitute a stub that fails on demand to exercise the §7 write-failure
// contract without a real terminal.
type Writer interface {
	Write(p []byte) (int, error)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// EventType distinguishes what PollEvent returned (§6 "Event codes").
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventError
	EventShutdown
)

// Event is the result of PollEvent. For EventKey, CharCode/KeyCode/Mod
// mirror input.Event; for EventResize, Width/Height hold the new size.
type Event struct {
	Type     EventType
	CharCode rune
	KeyCode  input.Key
	Mod      input.Mod
	Width    int
	Height   int
}

// Engine owns the two cell buffers, the terminal, the input reader, and the
// frame-pacing/state-machine logic described in §3 "Engine state" and §4.5.
type Engine struct {
	state State

	front, back *CellBuffer
	width, height int

	termIO *term.IO
	in     *input.Reader
	writer Writer

	out             []byte
	pacer           *pacer
	coalesceGap     int
	forceFullRedraw bool
	hiddenCursor    bool

	pendingResize  bool
	pendingResizeW int
	pendingResizeH int

	frameCount uint64

	lastErr        error
	pendingOneShot *Event

	logger Logger
}

// New creates an engine: enters raw mode and the alternate screen, queries
// the terminal size, and transitions Initializing -> Running. On failure it
// transitions directly to Stopped, tearing down whatever was acquired
// (§4.6 "else transitions directly to Stopped with teardown").
func New(cfg config.Config) (*Engine, error) {
	t := term.New()
	e := &Engine{
		state:       StateInitializing,
		termIO:      t,
		writer:      t,
		logger:      nopLogger{},
		coalesceGap: cfg.CoalesceGap,
		pacer:       newPacer(cfg.FrameRateHz),
		hiddenCursor: cfg.HiddenCursor,
	}

	if err := t.Enter(); err != nil {
		t.Close()
		e.state = StateStopped
		return e, err
	}

	w, h, err := t.Size()
	if err != nil {
		w, h = 80, 24
		e.logger.Printf("flywheel: terminal size query failed, falling back to 80x24: %v", err)
	}

	e.in = input.NewReader(t.Fd())
	e.front = NewCellBuffer(w, h)
	e.back = NewCellBuffer(w, h)
	e.width, e.height = w, h
	e.forceFullRedraw = true
	e.state = StateRunning
	return e, nil
}

// NewHeadless creates a Running engine over a pair of in-memory buffers,
// touching no terminal: no raw mode, no alternate screen, no SIGWINCH
// watcher, no input reader. EndFrame still diffs and flushes into its
// internal byte accumulator (inspectable in this package's own tests) but
// never performs a write syscall, and PollEvent always reports EventNone.
// It exists for tests and for hosts that want Flywheel's buffers and draw
// primitives without owning a real terminal (e.g. driving a widget's
// Render in a test harness).
func NewHeadless(width, height int) *Engine {
	return &Engine{
		state:           StateRunning,
		front:           NewCellBuffer(width, height),
		back:            NewCellBuffer(width, height),
		width:           width,
		height:          height,
		pacer:           newPacer(DefaultFrameRate),
		logger:          nopLogger{},
		forceFullRedraw: true,
	}
}

// SetLogger installs l as the engine's diagnostic sink. Passing nil
// restores the no-op logger.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	e.logger = l
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// IsRunning reports whether the engine is in the Running state (§6
// "is_running").
func (e *Engine) IsRunning() bool { return e.state == StateRunning }

// Width returns the current terminal width in columns.
func (e *Engine) Width() int { return e.width }

// Height returns the current terminal height in rows.
func (e *Engine) Height() int { return e.height }

// FrameCount returns the number of begin_frame calls so far, per
// SPEC_FULL.md §13's introspection addition.
func (e *Engine) FrameCount() uint64 { return e.frameCount }

// LastError returns the error recorded by the most recent I/O failure, if
// any (§7).
func (e *Engine) LastError() error { return e.lastErr }

// Stop is idempotent and immediate: it does not flush pending drawing
// (§5 "Cancellation / timeouts").
func (e *Engine) Stop() {
	if e.state == StateRunning {
		e.state = StateStopping
	}
}

// Close tears down the terminal (restoring raw mode and the primary
// screen) regardless of the engine's current state, mirroring the
// destructor guarantee of §3 "Lifecycle" and §5 "Scoped terminal
// acquisition". It is idempotent.
func (e *Engine) Close() {
	if e.state == StateStopped {
		return
	}
	e.state = StateStopped
	if e.termIO != nil {
		e.termIO.Close()
	}
}

func (e *Engine) drawable() bool {
	return e.state == StateRunning
}

// RequestRedraw sets force_full_redraw so the next end_frame repaints
// unconditionally (§4.5).
func (e *Engine) RequestRedraw() {
	e.forceFullRedraw = true
}

// RequestUpdate is advisory: actual flushing is always paced by end_frame
// (Open Question (b)).
func (e *Engine) RequestUpdate() {}

// HandleResize records new dimensions; the actual buffer resize happens on
// the next begin_frame (§4.5, idempotent).
func (e *Engine) HandleResize(w, h int) {
	e.pendingResize = true
	e.pendingResizeW, e.pendingResizeH = w, h
}

// BeginFrame advances the frame counter, applies any pending resize
// (growing both buffers and forcing a full redraw), and clears the back
// buffer for a fresh round of drawing (§4.5 step 1).
func (e *Engine) BeginFrame() {
	if e.state != StateRunning {
		return
	}
	e.frameCount++

	if e.termIO != nil {
		if w, h, ok := e.termIO.PollResize(); ok {
			e.pendingResize = true
			e.pendingResizeW, e.pendingResizeH = w, h
		}
	}
	if e.pendingResize {
		e.front.Resize(e.pendingResizeW, e.pendingResizeH)
		e.back.Resize(e.pendingResizeW, e.pendingResizeH)
		e.width, e.height = e.pendingResizeW, e.pendingResizeH
		e.pendingResize = false
		e.forceFullRedraw = true
	}
	e.back.Clear()
}

// SetCell writes a single cell to the back buffer (§6 "set_cell"); a no-op
// outside the Running state or out of bounds.
func (e *Engine) SetCell(x, y int, ch rune, fg, bg Color) {
	if !e.drawable() {
		return
	}
	e.back.Set(x, y, Cell{Ch: ch, Fg: fg, Bg: bg})
}

// GetCell reads a cell from the back buffer, used by stream.Widget to
// implement its "more below" inverted marker.
func (e *Engine) GetCell(x, y int) Cell {
	return e.back.Get(x, y)
}

// DrawText draws s into the back buffer at (x, y), clipping right, and
// returns the number of columns written (§6 "draw_text").
func (e *Engine) DrawText(x, y int, s string, fg, bg Color) int {
	if !e.drawable() {
		return 0
	}
	return e.back.DrawText(x, y, s, fg, bg)
}

// DrawTextAt is DrawText clipped to column limitX instead of the buffer's
// full width, for widgets that must stay inside their own placement
// rectangle.
func (e *Engine) DrawTextAt(x, y int, s string, fg, bg Color, limitX int) int {
	if !e.drawable() {
		return 0
	}
	return e.back.DrawTextClipped(x, y, s, fg, bg, limitX)
}

// Clear fills the back buffer with empty cells (§6 "clear").
func (e *Engine) Clear() {
	if !e.drawable() {
		return
	}
	e.back.Clear()
}

// FillRect fills a rectangle of the back buffer with ch/fg/bg, clipped to
// bounds (§6 "fill_rect").
func (e *Engine) FillRect(x, y, w, h int, ch rune, fg, bg Color) {
	if !e.drawable() {
		return
	}
	e.back.FillRect(x, y, w, h, Cell{Ch: ch, Fg: fg, Bg: bg})
}

// EndFrame consults the pacer: if the minimum inter-frame interval hasn't
// elapsed, the frame is dropped (the back buffer's content is retained for
// the next frame to build on). Otherwise it diffs back against front,
// writes the resulting byte stream in one syscall, swaps the buffers, and
// clears force_full_redraw (§4.5 step 3).
func (e *Engine) EndFrame() {
	if e.state != StateRunning {
		return
	}
	if !e.pacer.due() {
		return
	}

	e.out = flush(e.out[:0], e.front, e.back, e.forceFullRedraw, e.hiddenCursor, e.coalesceGap)
	if len(e.out) > 0 && e.writer != nil {
		if _, err := e.writer.Write(e.out); err != nil {
			e.lastErr = err
			e.state = StateStopping
			e.pendingOneShot = &Event{Type: EventError}
			e.logger.Printf("flywheel: terminal write failed: %v", err)
			return
		}
	}

	e.back.clearDirty()
	e.front, e.back = e.back, e.front
	e.forceFullRedraw = false
	e.pacer.markFlushed()
}

// PollEvent returns the next input/resize/error/shutdown event, or
// EventNone if nothing is available (§4.5, §6). In Stopping it returns at
// most the single pending event recorded by the transition into Stopping,
// then EventNone forever after; in Stopped it always returns EventNone
// (§4.6 "state machine").
func (e *Engine) PollEvent() Event {
	if e.state == StateStopped {
		return Event{Type: EventNone}
	}
	if e.state == StateStopping {
		if e.pendingOneShot != nil {
			ev := *e.pendingOneShot
			e.pendingOneShot = nil
			return ev
		}
		return Event{Type: EventNone}
	}

	// A pending resize takes precedence over stdin events, surfaced on the
	// first poll after the signal fires (§5 "Ordering guarantees").
	if e.termIO != nil {
		if w, h, ok := e.termIO.PollResize(); ok {
			e.pendingResize = true
			e.pendingResizeW, e.pendingResizeH = w, h
			return Event{Type: EventResize, Width: w, Height: h}
		}
	}

	if e.in == nil {
		return Event{Type: EventNone}
	}

	ev := e.in.Poll()
	switch ev.Type {
	case input.EventNone:
		return Event{Type: EventNone}
	case input.EventShutdown:
		e.state = StateStopping
		return Event{Type: EventShutdown}
	case input.EventError:
		return Event{Type: EventError}
	case input.EventKey:
		return Event{Type: EventKey, CharCode: ev.CharCode, KeyCode: ev.KeyCode, Mod: ev.Mod}
	default:
		return Event{Type: EventNone}
	}
}
