// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/padbox/internal/app/keymap"
)

// Config represents the application configuration.
type Config struct {
	Hooks    HooksConfig             `yaml:"hooks"`
	Playlist PlaylistConfig          `yaml:"playlist"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Input    InputConfig             `yaml:"input"`
	Display  DisplayConfig           `yaml:"display"`
	Audio    AudioConfig             `yaml:"audio"`
	Keys     KeysConfig              `yaml:"keys"`
	Playback PlaybackConfig          `yaml:"playback"`
	Messages MessagesConfig          `yaml:"messages"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted      []string `yaml:"on_started"`
	OnStopped      []string `yaml:"on_stopped"`
	OnTrackStarted []string `yaml:"on_track_started"`
}

// PlaylistConfig represents the track directory configuration.
type PlaylistConfig struct {
	Dir      string `yaml:"dir" default:"./playlist" validate:"required"`
	Sort     bool   `yaml:"sort"`
	ReadTags *bool  `yaml:"read_tags" default:"true"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// InputConfig represents the key input source configuration.
type InputConfig struct {
	Type           string         `yaml:"type" default:"keypad" validate:"oneof=keypad terminal"`
	DebounceMs     int            `yaml:"debounce_ms" default:"50" validate:"gte=0,lte=1000"`
	PollIntervalMs int            `yaml:"poll_interval_ms" default:"10" validate:"gte=1,lte=1000"`
	Settings       map[string]any `yaml:"settings,omitempty"`
}

// DisplayConfig represents the character display configuration.
type DisplayConfig struct {
	Type      string   `yaml:"type" default:"lcd" validate:"oneof=lcd console"`
	Bus       string   `yaml:"bus"`
	Addresses []uint16 `yaml:"addresses" default:"[39,63]" validate:"min=1,dive,gte=3,lte=119"`
	Rows      int      `yaml:"rows" default:"2" validate:"gte=1,lte=4"`
	Cols      int      `yaml:"cols" default:"16" validate:"gte=8,lte=40"`
	Backlight *bool    `yaml:"backlight" default:"true"`
}

// AudioConfig represents the audio output configuration.
type AudioConfig struct {
	SampleRate      int `yaml:"sample_rate" default:"44100" validate:"gte=8000,lte=192000"`
	BufferMs        int `yaml:"buffer_ms" default:"100" validate:"gte=10,lte=2000"`
	ResampleQuality int `yaml:"resample_quality" default:"4" validate:"gte=1,lte=64"`
}

// KeysConfig maps each action to a single key. An explicit empty string
// leaves the action unbound; exit is always bound.
type KeysConfig struct {
	PrevTrack   *string `yaml:"prev_track" default:"1" validate:"omitempty,max=1"`
	NextTrack   *string `yaml:"next_track" default:"3" validate:"omitempty,max=1"`
	SeekBack    *string `yaml:"seek_back" default:"4" validate:"omitempty,max=1"`
	TogglePause *string `yaml:"toggle_pause" default:"5" validate:"omitempty,max=1"`
	SeekForward *string `yaml:"seek_forward" default:"6" validate:"omitempty,max=1"`
	Exit        string  `yaml:"exit" default:"A" validate:"required,len=1"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	SeekStepSec int `yaml:"seek_step_sec" default:"10" validate:"gte=1,lte=600"`
}

// MessagesConfig represents texts shown on the display.
type MessagesConfig struct {
	Splash   string `yaml:"splash" default:"PROGRAM INIT"`
	Paused   string `yaml:"paused" default:"PAUSED"`
	Stopped  string `yaml:"stopped" default:"STOPPED"`
	NoTracks string `yaml:"no_tracks" default:"NO TRACKS"`
}

// DefaultFilters is used when the config has no filters section.
func DefaultFilters() map[string]FilterConfig {
	return map[string]FilterConfig{
		"directory_filter":   {Enabled: true},
		"hidden_file_filter": {Enabled: true},
		"extension_filter":   {Enabled: true},
	}
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	var cfg Config
	cfg.overrideFromEnv()
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return &cfg, nil
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() error {
	// Set defaults using creasty/defaults
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if c.Filters == nil {
		c.Filters = DefaultFilters()
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("PADBOX_PLAYLIST_DIR"); v != "" {
		c.Playlist.Dir = v
	}
	if v := os.Getenv("PADBOX_INPUT_TYPE"); v != "" {
		c.Input.Type = strings.ToLower(v)
	}
	if v := os.Getenv("PADBOX_DISPLAY_TYPE"); v != "" {
		c.Display.Type = strings.ToLower(v)
	}
	if v := os.Getenv("PADBOX_I2C_BUS"); v != "" {
		c.Display.Bus = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if _, err := c.Bindings(); err != nil {
		return errors.Wrap(err, "invalid key bindings")
	}

	return nil
}

// Bindings builds the key bindings from the keys section.
func (c *Config) Bindings() (keymap.Bindings, error) {
	return keymap.FromStrings(map[keymap.Action]string{
		keymap.ActionPrevTrack:   deref(c.Keys.PrevTrack),
		keymap.ActionNextTrack:   deref(c.Keys.NextTrack),
		keymap.ActionSeekBack:    deref(c.Keys.SeekBack),
		keymap.ActionTogglePause: deref(c.Keys.TogglePause),
		keymap.ActionSeekForward: deref(c.Keys.SeekForward),
		keymap.ActionExit:        c.Keys.Exit,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetMessage returns the display text for the given code.
func (c *Config) GetMessage(code string) string {
	switch code {
	case "splash":
		return c.Messages.Splash
	case "paused":
		return c.Messages.Paused
	case "stopped":
		return c.Messages.Stopped
	case "no_tracks":
		return c.Messages.NoTracks
	default:
		return ""
	}
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// SeekStep returns the seek step as a duration.
func (c *Config) SeekStep() time.Duration {
	return time.Duration(c.Playback.SeekStepSec) * time.Second
}

// Debounce returns the minimum spacing between accepted key events.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Input.DebounceMs) * time.Millisecond
}

// PollInterval returns the input poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Input.PollIntervalMs) * time.Millisecond
}

// ReadTags reports whether tag metadata should be read.
func (c *Config) ReadTags() bool {
	return c.Playlist.ReadTags == nil || *c.Playlist.ReadTags
}

// BacklightOn reports whether the display backlight should be on.
func (c *Config) BacklightOn() bool {
	return c.Display.Backlight == nil || *c.Display.Backlight
}
