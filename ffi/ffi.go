// Package ffi is the cgo boundary matching flywheel.h: opaque handles for
// FlywheelEngine* and FlywheelStream*, event and key codes (it defines no
// result-code constants), and the
// flywheel_engine_*/flywheel_stream_* exported functions. No example repo in
// the pack exercises cgo, so the handle-table pattern here follows the Go
// project's own documented cgo pointer-passing rules rather than a
// retrieved file: a Go pointer may never be stored in C memory or handed
// back as an opaque void*, so each live Engine/Widget is kept in a registry
// and the "pointer" crossing the boundary is really a small integer handle
// wrapped in unsafe.Pointer, never a real Go pointer.
package ffi

/*
#include <stdint.h>
#include <stdbool.h>
#include <stddef.h>

typedef struct FlywheelKeyEvent {
    uint32_t char_code;
    int key_code;
    unsigned int modifiers;
} FlywheelKeyEvent;

typedef struct FlywheelResizeEvent {
    uint16_t width;
    uint16_t height;
} FlywheelResizeEvent;

typedef struct FlywheelEvent {
    int event_type;
    FlywheelKeyEvent key;
    FlywheelResizeEvent resize;
} FlywheelEvent;
*/
import "C"

import (
	"sync"
	"unsafe"

	flywheel "github.com/ccheshirecat/flywheel"
	"github.com/ccheshirecat/flywheel/config"
	"github.com/ccheshirecat/flywheel/stream"
)

// Event type codes, matching FlywheelEventType exactly.
const (
	eventNone     = 0
	eventKey      = 1
	eventResize   = 2
	eventError    = 3
	eventShutdown = 4
)

// Key codes, matching FLYWHEEL_KEY_* exactly.
const (
	keyNone = iota
	keyEnter
	keyEscape
	keyBackspace
	keyTab
	keyLeft
	keyRight
	keyUp
	keyDown
	keyHome
	keyEnd
	keyPageUp
	keyPageDown
	keyDelete
)

// registry maps small integer handles to live engines/widgets, since a Go
// pointer can never be stored behind a C void* per cgo's pointer-passing
// rules.
type registry struct {
	mu      sync.Mutex
	engines map[uintptr]*flywheel.Engine
	streams map[uintptr]*stream.Widget
	next    uintptr
}

var reg = &registry{
	engines: make(map[uintptr]*flywheel.Engine),
	streams: make(map[uintptr]*stream.Widget),
	next:    1,
}

func (r *registry) putEngine(e *flywheel.Engine) unsafe.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.engines[h] = e
	return unsafe.Pointer(h) //nolint:govet // handle, not a real pointer; see package doc
}

func (r *registry) getEngine(p unsafe.Pointer) *flywheel.Engine {
	if p == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engines[uintptr(p)]
}

func (r *registry) dropEngine(p unsafe.Pointer) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, uintptr(p))
}

func (r *registry) putStream(s *stream.Widget) unsafe.Pointer {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.next
	r.next++
	r.streams[h] = s
	return unsafe.Pointer(h) //nolint:govet
}

func (r *registry) getStream(p unsafe.Pointer) *stream.Widget {
	if p == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams[uintptr(p)]
}

func (r *registry) dropStream(p unsafe.Pointer) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.streams, uintptr(p))
}

//export flywheel_engine_new
func flywheel_engine_new() unsafe.Pointer {
	e, err := flywheel.New(config.Default())
	if err != nil {
		return nil
	}
	return reg.putEngine(e)
}

//export flywheel_engine_destroy
func flywheel_engine_destroy(h unsafe.Pointer) {
	e := reg.getEngine(h)
	if e == nil {
		return
	}
	e.Close()
	reg.dropEngine(h)
}

//export flywheel_engine_width
func flywheel_engine_width(h unsafe.Pointer) C.uint16_t {
	e := reg.getEngine(h)
	if e == nil {
		return 0
	}
	return C.uint16_t(e.Width())
}

//export flywheel_engine_height
func flywheel_engine_height(h unsafe.Pointer) C.uint16_t {
	e := reg.getEngine(h)
	if e == nil {
		return 0
	}
	return C.uint16_t(e.Height())
}

//export flywheel_engine_is_running
func flywheel_engine_is_running(h unsafe.Pointer) C.bool {
	e := reg.getEngine(h)
	if e == nil {
		return C.bool(false)
	}
	return C.bool(e.IsRunning())
}

//export flywheel_engine_stop
func flywheel_engine_stop(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.Stop()
	}
}

//export flywheel_engine_handle_resize
func flywheel_engine_handle_resize(h unsafe.Pointer, width, height C.uint16_t) {
	if e := reg.getEngine(h); e != nil {
		e.HandleResize(int(width), int(height))
	}
}

//export flywheel_engine_request_redraw
func flywheel_engine_request_redraw(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.RequestRedraw()
	}
}

//export flywheel_engine_request_update
func flywheel_engine_request_update(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.RequestUpdate()
	}
}

//export flywheel_engine_begin_frame
func flywheel_engine_begin_frame(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.BeginFrame()
	}
}

//export flywheel_engine_end_frame
func flywheel_engine_end_frame(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.EndFrame()
	}
}

//export flywheel_engine_set_cell
func flywheel_engine_set_cell(h unsafe.Pointer, x, y C.uint16_t, c C.char, fg, bg C.uint32_t) {
	e := reg.getEngine(h)
	if e == nil {
		return
	}
	e.SetCell(int(x), int(y), rune(byte(c)), flywheel.Color(fg), flywheel.Color(bg))
}

//export flywheel_engine_draw_text
func flywheel_engine_draw_text(h unsafe.Pointer, x, y C.uint16_t, text *C.char, fg, bg C.uint32_t) C.uint16_t {
	e := reg.getEngine(h)
	if e == nil || text == nil {
		return 0
	}
	s := C.GoString(text)
	n := e.DrawText(int(x), int(y), s, flywheel.Color(fg), flywheel.Color(bg))
	return C.uint16_t(n)
}

//export flywheel_engine_clear
func flywheel_engine_clear(h unsafe.Pointer) {
	if e := reg.getEngine(h); e != nil {
		e.Clear()
	}
}

//export flywheel_engine_fill_rect
func flywheel_engine_fill_rect(h unsafe.Pointer, x, y, width, height C.uint16_t, c C.char, fg, bg C.uint32_t) {
	e := reg.getEngine(h)
	if e == nil {
		return
	}
	e.FillRect(int(x), int(y), int(width), int(height), rune(byte(c)), flywheel.Color(fg), flywheel.Color(bg))
}

//export flywheel_engine_poll_event
func flywheel_engine_poll_event(h unsafe.Pointer, out *C.FlywheelEvent) C.int {
	e := reg.getEngine(h)
	if e == nil || out == nil {
		return eventNone
	}
	ev := e.PollEvent()
	*out = C.FlywheelEvent{}
	switch ev.Type {
	case flywheel.EventKey:
		out.event_type = eventKey
		out.key.char_code = C.uint32_t(ev.CharCode)
		// input.Key's iota ordering was defined to match FLYWHEEL_KEY_*
		// exactly, so no translation table is needed here.
		out.key.key_code = C.int(ev.KeyCode)
		out.key.modifiers = C.uint(ev.Mod)
		return eventKey
	case flywheel.EventResize:
		out.event_type = eventResize
		out.resize.width = C.uint16_t(ev.Width)
		out.resize.height = C.uint16_t(ev.Height)
		return eventResize
	case flywheel.EventError:
		out.event_type = eventError
		return eventError
	case flywheel.EventShutdown:
		out.event_type = eventShutdown
		return eventShutdown
	default:
		out.event_type = eventNone
		return eventNone
	}
}

//export flywheel_stream_new
func flywheel_stream_new(x, y, width, height C.uint16_t) unsafe.Pointer {
	// flywheel.h declares no config type, so every C-side constructor (this
	// one and flywheel_engine_new) always gets package defaults; a caller
	// that needs custom ring bounds has to go through the Go API (stream.New)
	// directly rather than through the cgo boundary.
	w := stream.NewWidget(int(x), int(y), int(width), int(height))
	return reg.putStream(w)
}

//export flywheel_stream_destroy
func flywheel_stream_destroy(h unsafe.Pointer) {
	reg.dropStream(h)
}

//export flywheel_stream_append
func flywheel_stream_append(h unsafe.Pointer, text *C.char) C.int {
	w := reg.getStream(h)
	if w == nil || text == nil {
		return -1
	}
	return C.int(w.Append(C.GoString(text)))
}

//export flywheel_stream_render
func flywheel_stream_render(h, engineH unsafe.Pointer) {
	w := reg.getStream(h)
	e := reg.getEngine(engineH)
	if w == nil || e == nil {
		return
	}
	w.Render(e)
}

//export flywheel_stream_clear
func flywheel_stream_clear(h unsafe.Pointer) {
	if w := reg.getStream(h); w != nil {
		w.Clear()
	}
}

//export flywheel_stream_set_fg
func flywheel_stream_set_fg(h unsafe.Pointer, color C.uint32_t) {
	if w := reg.getStream(h); w != nil {
		w.SetFg(flywheel.Color(color))
	}
}

//export flywheel_stream_set_bg
func flywheel_stream_set_bg(h unsafe.Pointer, color C.uint32_t) {
	if w := reg.getStream(h); w != nil {
		w.SetBg(flywheel.Color(color))
	}
}

//export flywheel_stream_scroll_up
func flywheel_stream_scroll_up(h unsafe.Pointer, lines C.size_t) {
	if w := reg.getStream(h); w != nil {
		w.ScrollUp(int(lines))
	}
}

//export flywheel_stream_scroll_down
func flywheel_stream_scroll_down(h unsafe.Pointer, lines C.size_t) {
	if w := reg.getStream(h); w != nil {
		w.ScrollDown(int(lines))
	}
}

//export flywheel_rgb
func flywheel_rgb(r, g, b C.uint8_t) C.uint32_t {
	return C.uint32_t(flywheel.RGB(uint8(r), uint8(g), uint8(b)))
}

//export flywheel_version
func flywheel_version() *C.char {
	return C.CString("0.1.0")
}
