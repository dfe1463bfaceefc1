// Package input parses stdin into typed events without ever blocking
// (§4.4 "InputReader"). It is grounded in the teacher's tui/input.go and
// tui/key.go, but where the teacher spawns a goroutine that blocks on
// reader.ReadByte() and hands events across a channel, Flywheel's Reader is
// driven entirely by the engine's single owner task: Poll calls
// unix.Poll(fd, 0) to check readiness, reads what is available, and parses
// as much as it can, buffering any incomplete escape sequence for the next
// call. This matches §5's "the engine never blocks" more directly than a
// channel handoff would.
package input

import (
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// EventType distinguishes the event categories returned by Poll (§6 "Event
// codes").
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventResize
	EventError
	EventShutdown
)

// Key is a named special key (§6 "Key codes"); the numeric values match the
// C ABI's FLYWHEEL_KEY_* constants exactly.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
)

// Mod is a bitmask of modifier keys; values match FLYWHEEL_MOD_* exactly.
type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)

// Event is one decoded input event. For EventKey, CharCode holds the
// printable rune (0 for a pure special key) and KeyCode the named key
// (KeyNone for a pure printable rune).
type Event struct {
	Type     EventType
	CharCode rune
	KeyCode  Key
	Mod      Mod
}

// escDrain is how long a solitary ESC (or an unterminated CSI/SS3 prefix)
// is held before being resolved, per §4.4 "short drain window".
const escDrain = 10 * time.Millisecond

// Reader is a non-blocking stdin parser. It is not safe for concurrent use;
// like term.IO it is driven by a single owner task (§5).
type Reader struct {
	fd      int
	pending []byte
	since   time.Time
	scratch [256]byte
	now     func() time.Time

	eof         bool
	eofReported bool
}

// NewReader wraps the given file descriptor (typically stdin).
func NewReader(fd int) *Reader {
	return &Reader{fd: fd, now: time.Now}
}

// Poll returns the next decoded event, or EventNone if nothing is
// available yet (§4.4, §4.5 "poll_event is non-blocking").
func (r *Reader) Poll() Event {
	if r.eof {
		if r.eofReported {
			return Event{Type: EventNone}
		}
		r.eofReported = true
		return Event{Type: EventShutdown}
	}

	r.fill()
	if len(r.pending) == 0 {
		return Event{Type: EventNone}
	}

	ev, n, needMore := r.parse(r.pending)
	if needMore {
		if r.now().Sub(r.since) < escDrain {
			return Event{Type: EventNone}
		}
		// Drain window elapsed with no resolving bytes.
		if len(r.pending) == 1 && r.pending[0] == 0x1b {
			r.consume(1)
			return Event{Type: EventKey, KeyCode: KeyEscape}
		}
		r.consume(len(r.pending))
		return Event{Type: EventError}
	}
	r.consume(n)
	return ev
}

// fill does one non-blocking readiness check and, if stdin has data, one
// read, growing r.pending. It never blocks: a zero-timeout poll is the only
// syscall that can report "not ready".
func (r *Reader) fill() {
	fds := []unix.PollFd{{Fd: int32(r.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return
	}
	nr, err := unix.Read(r.fd, r.scratch[:])
	if err != nil {
		return
	}
	if nr == 0 {
		r.eof = true
		return
	}
	if len(r.pending) == 0 {
		r.since = r.now()
	}
	r.pending = append(r.pending, r.scratch[:nr]...)
}

func (r *Reader) consume(n int) {
	r.pending = r.pending[n:]
	if len(r.pending) > 0 {
		r.since = r.now()
	}
}

// parse attempts to decode one event from the front of buf. needMore is
// true when buf holds a prefix of an escape sequence that isn't resolvable
// yet (caller should wait for more bytes or the drain timeout).
func (r *Reader) parse(buf []byte) (ev Event, n int, needMore bool) {
	b0 := buf[0]

	if b0 == 0x1b {
		return parseEscape(buf)
	}

	switch {
	case b0 == '\r' || b0 == '\n':
		return Event{Type: EventKey, KeyCode: KeyEnter}, 1, false
	case b0 == '\t':
		return Event{Type: EventKey, KeyCode: KeyTab}, 1, false
	case b0 == 0x7f || b0 == 0x08:
		return Event{Type: EventKey, KeyCode: KeyBackspace}, 1, false
	case b0 < 0x20:
		return Event{Type: EventKey, CharCode: rune(b0 + 0x60), Mod: ModCtrl}, 1, false
	case b0 < 0x80:
		return Event{Type: EventKey, CharCode: rune(b0)}, 1, false
	default:
		r, size := utf8.DecodeRune(buf)
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(buf) {
				return Event{}, 0, true
			}
			return Event{Type: EventError}, 1, false
		}
		return Event{Type: EventKey, CharCode: r}, size, false
	}
}

func parseEscape(buf []byte) (Event, int, bool) {
	if len(buf) < 2 {
		return Event{}, 0, true
	}
	switch buf[1] {
	case '[':
		return parseCSI(buf)
	case 'O':
		return parseSS3(buf)
	default:
		return Event{Type: EventKey, CharCode: rune(buf[1]), Mod: ModAlt}, 2, false
	}
}

// parseCSI decodes "ESC [ <params> <final>" starting at buf[0] == 0x1b.
func parseCSI(buf []byte) (Event, int, bool) {
	i := 2
	for i < len(buf) && buf[i] >= 0x30 && buf[i] <= 0x3f {
		i++
	}
	if i >= len(buf) {
		return Event{}, 0, true
	}
	final := buf[i]
	if final < 0x40 || final > 0x7e {
		return Event{Type: EventError}, i + 1, false
	}
	params := string(buf[2:i])
	n := i + 1

	key, mod, ok := dispatchCSI(params, final)
	if !ok {
		return Event{Type: EventError}, n, false
	}
	return Event{Type: EventKey, KeyCode: key, Mod: mod}, n, false
}

func dispatchCSI(params string, final byte) (Key, Mod, bool) {
	switch final {
	case 'A':
		return KeyUp, modOf(params), true
	case 'B':
		return KeyDown, modOf(params), true
	case 'C':
		return KeyRight, modOf(params), true
	case 'D':
		return KeyLeft, modOf(params), true
	case 'H':
		return KeyHome, modOf(params), true
	case 'F':
		return KeyEnd, modOf(params), true
	case '~':
		code, modField := splitParam(params)
		mod := csiMod(modField)
		switch code {
		case "1", "7":
			return KeyHome, mod, true
		case "3":
			return KeyDelete, mod, true
		case "4", "8":
			return KeyEnd, mod, true
		case "5":
			return KeyPageUp, mod, true
		case "6":
			return KeyPageDown, mod, true
		}
	}
	return KeyNone, ModNone, false
}

// modOf decodes the modifier field of a "1;<mod>" CSI sequence such as
// "1;2A", where the leading "1" is a fixed parameter and the modifier
// follows the ';'. A bare sequence like "A" with no params carries no
// modifier.
func modOf(params string) Mod {
	_, modField := splitParam(params)
	return csiMod(modField)
}

// splitParam splits "a;b" into ("a", "b"); if there is no ';' the second
// return value is "".
func splitParam(p string) (string, string) {
	for i := 0; i < len(p); i++ {
		if p[i] == ';' {
			return p[:i], p[i+1:]
		}
	}
	return p, ""
}

// csiMod decodes the xterm modifier field of a "1;<mod>" CSI parameter
// (where the field equals modifier-bits+1) into our Mod bitmask, remapping
// xterm's shift/alt/ctrl/meta bit order to FLYWHEEL_MOD_* order (§8 S6).
func csiMod(field string) Mod {
	if field == "" {
		return ModNone
	}
	v := 0
	for i := 0; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return ModNone
		}
		v = v*10 + int(field[i]-'0')
	}
	if v <= 0 {
		return ModNone
	}
	x := v - 1
	var m Mod
	if x&1 != 0 {
		m |= ModShift
	}
	if x&2 != 0 {
		m |= ModAlt
	}
	if x&4 != 0 {
		m |= ModCtrl
	}
	if x&8 != 0 {
		m |= ModSuper
	}
	return m
}

// parseSS3 decodes "ESC O <final>" (application cursor keys mode).
func parseSS3(buf []byte) (Event, int, bool) {
	if len(buf) < 3 {
		return Event{}, 0, true
	}
	switch buf[2] {
	case 'A':
		return Event{Type: EventKey, KeyCode: KeyUp}, 3, false
	case 'B':
		return Event{Type: EventKey, KeyCode: KeyDown}, 3, false
	case 'C':
		return Event{Type: EventKey, KeyCode: KeyRight}, 3, false
	case 'D':
		return Event{Type: EventKey, KeyCode: KeyLeft}, 3, false
	case 'H':
		return Event{Type: EventKey, KeyCode: KeyHome}, 3, false
	case 'F':
		return Event{Type: EventKey, KeyCode: KeyEnd}, 3, false
	}
	return Event{Type: EventError}, 3, false
}
