package flywheel

import "strconv"

// Color is a 24-bit RGB color packed as 0xRRGGBB, per flywheel_rgb in the C
// ABI (§6 "Color encoding").
type Color uint32

// DefaultColor means "use the terminal's default foreground/background";
// it carries no SGR color escape at all. It is out of the 24-bit RGB range
// so it never collides with a real color, including real black (0x000000).
const DefaultColor Color = 1 << 24

// RGB packs r, g, b (0-255 each) into a Color.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

// IsDefault reports whether c is the unset/default color.
func (c Color) IsDefault() bool {
	return c == DefaultColor
}

func (c Color) components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// appendSGR appends the SGR sequence selecting c as the foreground (fg=true)
// or background (fg=false) color to dst.
func (c Color) appendSGR(dst []byte, fg bool) []byte {
	r, g, b := c.components()
	if fg {
		dst = append(dst, "38;2;"...)
	} else {
		dst = append(dst, "48;2;"...)
	}
	dst = strconv.AppendUint(dst, uint64(r), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(g), 10)
	dst = append(dst, ';')
	dst = strconv.AppendUint(dst, uint64(b), 10)
	return dst
}
