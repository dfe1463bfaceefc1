// Package config defines Flywheel's process-level tunables and an optional
// TOML loader. The teacher repo has no configuration layer of its own (its
// demos hardcode everything), so this follows the ambient-config convention
// the pack's other TUI framework uses BurntSushi/toml for: a plain struct
// with documented defaults, decoded in one call.
package config

import "github.com/BurntSushi/toml"

// Config holds the tunables spec.md leaves as engine-level knobs: the frame
// rate cap (Open Question (c)), the differ's coalesce gap (§4.2), and the
// stream widget's ring bounds (§3).
type Config struct {
	// FrameRateHz caps end_frame flushes. Zero means DefaultFrameRate (60).
	FrameRateHz int `toml:"frame_rate_hz"`
	// CoalesceGap is the differ's identical-cell bridging threshold. Zero
	// means CoalesceGap (3).
	CoalesceGap int `toml:"coalesce_gap"`
	// StreamMaxLines and StreamMaxLineCols bound a stream.Widget's ring.
	// Zero means their package defaults.
	StreamMaxLines    int `toml:"stream_max_lines"`
	StreamMaxLineCols int `toml:"stream_max_line_cols"`
	// HiddenCursor keeps the cursor hidden after every flush instead of
	// showing it once drawing settles (§4.2 "unless the engine requested
	// hidden cursor mode").
	HiddenCursor bool `toml:"hidden_cursor"`
}

// Default returns the zero-value Config; every field's zero value already
// means "use the component's own default", so this exists purely for
// readability at call sites.
func Default() Config {
	return Config{}
}

// Load decodes a TOML file at path into a Config seeded with Default.
// Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}
