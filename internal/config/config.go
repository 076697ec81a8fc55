// Package config loads and normalizes cubelens configuration from file,
// environment, and defaults.
package config

import (
	"errors"

	"github.com/gridlens/cubelens/internal/cube"
)

// Config is the top-level configuration struct for cubelens.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Cube    CubeConfig    `mapstructure:"cube"`
	Render  RenderConfig  `mapstructure:"render"`
	Session SessionConfig `mapstructure:"session"`
}

// CubeConfig holds resolver settings.
type CubeConfig struct {
	// Separator joins hierarchy path segments into composed member keys.
	Separator string `mapstructure:"separator"`
	// TopN is the per-axis member limit.
	TopN int `mapstructure:"top_n"`
	// SortMode is "totals" or "keyAsc".
	SortMode string `mapstructure:"sort_mode"`
}

// RenderConfig holds HTML rendering settings.
type RenderConfig struct {
	Title string `mapstructure:"title"`
	Theme string `mapstructure:"theme"`
}

// SessionConfig holds cross-invocation state settings.
type SessionConfig struct {
	Dir   string `mapstructure:"dir"`
	Codec string `mapstructure:"codec"`
}

// Default configuration values.
const (
	DefaultRenderTitle  = "Cubelens"
	DefaultRenderTheme  = "dark"
	DefaultSessionDir   = ".cubelens-state"
	DefaultSessionCodec = "json"
)

// Render theme names.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Session codec names.
const (
	CodecJSON = "json"
	CodecGob  = "gob"
	CodecLZ4  = "lz4"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidSessionCodec indicates an unknown session codec name.
	ErrInvalidSessionCodec = errors.New("session.codec must be json, gob, or lz4")
	// ErrInvalidRenderTheme indicates an unknown render theme name.
	ErrInvalidRenderTheme = errors.New("render.theme must be dark or light")
)

// Normalize clamps out-of-range cube settings into their valid domains.
// Degenerate values are repaired, not rejected: the resolver favors
// degraded rendering over halting.
func (c *Config) Normalize() {
	if c.Cube.Separator == "" {
		c.Cube.Separator = cube.DefaultSeparator
	}

	c.Cube.TopN = cube.ClampTopN(c.Cube.TopN)
	c.Cube.SortMode = string(cube.NormalizeSortMode(cube.SortMode(c.Cube.SortMode)))
}

// Validate checks the settings that cannot be silently repaired and returns
// the first error found.
func (c *Config) Validate() error {
	switch c.Session.Codec {
	case CodecJSON, CodecGob, CodecLZ4:
	default:
		return ErrInvalidSessionCodec
	}

	switch c.Render.Theme {
	case ThemeDark, ThemeLight:
	default:
		return ErrInvalidRenderTheme
	}

	return nil
}

// ResolverOptions maps the cube section onto resolver options.
func (c *Config) ResolverOptions() cube.Options {
	return cube.Options{
		Separator: c.Cube.Separator,
		TopN:      c.Cube.TopN,
		SortMode:  cube.SortMode(c.Cube.SortMode),
	}
}
