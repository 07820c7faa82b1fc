// Package config loads keybridge settings from TOML and watches them for edits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/keybridge/widget"
)

// Backend names accepted in [input] backend
const (
	BackendTcell     = "tcell"
	BackendTermbox   = "termbox"
	BackendWebSocket = "websocket"
)

// Config is the root of the TOML document
type Config struct {
	Input     InputConfig     `toml:"input"`
	WebSocket WebSocketConfig `toml:"websocket"`
	Field     FieldConfig     `toml:"field"`
	Sound     SoundConfig     `toml:"sound"`
	Log       LogConfig       `toml:"log"`
}

// InputConfig selects the host event source
type InputConfig struct {
	Backend  string `toml:"backend"`
	RingSize int    `toml:"ring_size"`
}

// WebSocketConfig configures the remote input server
type WebSocketConfig struct {
	Listen string `toml:"listen"`
}

// FieldConfig configures the demo edit field
type FieldConfig struct {
	Width         int    `toml:"width"`
	BlinkMs       int    `toml:"blink_ms"`
	EmacsLineKeys bool   `toml:"emacs_line_keys"`
	Command       uint32 `toml:"command"`
}

// SoundConfig toggles reject feedback
type SoundConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// BlinkInterval returns the caret blink period
func (f FieldConfig) BlinkInterval() time.Duration {
	return time.Duration(f.BlinkMs) * time.Millisecond
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Backend:  BackendTcell,
			RingSize: 256,
		},
		WebSocket: WebSocketConfig{
			Listen: "127.0.0.1:8765",
		},
		Field: FieldConfig{
			Width:         40,
			BlinkMs:       300,
			EmacsLineKeys: widget.DefaultEmacsLineKeys,
		},
		Sound: SoundConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate reports every invalid setting joined into one error
func (c *Config) Validate() error {
	var errs []error

	switch c.Input.Backend {
	case BackendTcell, BackendTermbox, BackendWebSocket:
	default:
		errs = append(errs, fmt.Errorf("input.backend: unknown backend %q", c.Input.Backend))
	}
	if c.Input.RingSize <= 0 {
		errs = append(errs, fmt.Errorf("input.ring_size: must be positive, got %d", c.Input.RingSize))
	}
	if c.Input.Backend == BackendWebSocket && c.WebSocket.Listen == "" {
		errs = append(errs, errors.New("websocket.listen: required by the websocket backend"))
	}
	if c.Field.Width <= 0 {
		errs = append(errs, fmt.Errorf("field.width: must be positive, got %d", c.Field.Width))
	}
	if c.Field.BlinkMs <= 0 {
		errs = append(errs, fmt.Errorf("field.blink_ms: must be positive, got %d", c.Field.BlinkMs))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Load reads path over the defaults; a missing file yields the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as TOML, creating the parent directory
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode TOML: %w", err)
	}
	return f.Close()
}
