package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-stripd/internal/state"
	"github.com/coreman2200/funtimes-stripd/internal/strip"
)

type Patterns struct {
	Names       []string `yaml:"names"`
	ScrollSpeed float32  `yaml:"scroll_speed"` // phase advance per tick
}

// Rand configures the shared sprite field.
type Rand struct {
	Count    int     `yaml:"count"`
	Falloff  float32 `yaml:"falloff"`
	MaxSpeed float32 `yaml:"max_speed"`
}

type Channel struct {
	Name      string        `yaml:"name"`
	LedCount  int           `yaml:"led_count"`
	LedType   strip.LedType `yaml:"led_type"`             // apa102 | ws2801 | 0 | 1
	SPIDevice string        `yaml:"spi_device,omitempty"` // e.g. /dev/spidev0.0; empty = simulation only
}

type Config struct {
	Brightness    float32 `yaml:"brightness"`      // 0..1
	SecsPerUpdate float32 `yaml:"secs_per_update"` // render tick
	Listen        string  `yaml:"listen"`
	StateDir      string  `yaml:"state_dir"`
	SPISpeedHz    int     `yaml:"spi_speed_hz"`
	Preview       bool    `yaml:"preview"`
	StaticDir     string  `yaml:"static_dir,omitempty"` // browser control page, served at /

	Patterns Patterns  `yaml:"patterns"`
	Rand     Rand      `yaml:"rand"`
	Channels []Channel `yaml:"channels"`
}

// Default is a single simulated 60 pixel APA102 channel.
func Default() *Config {
	return &Config{
		Brightness:    0.8,
		SecsPerUpdate: 0.02,
		Listen:        ":8080",
		StateDir:      ".",
		SPISpeedHz:    8_000_000,
		Patterns: Patterns{
			Names:       append([]string(nil), state.PatternNames...),
			ScrollSpeed: 0.005,
		},
		Rand: Rand{Count: 5, Falloff: 10, MaxSpeed: 0.01},
		Channels: []Channel{
			{Name: "strip0", LedCount: 60, LedType: strip.APA102},
		},
	}
}

// Load reads path on top of Default, so a file only needs the keys it
// changes. A file that lists channels replaces the default channel list.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.Channels = nil
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(c.Channels) == 0 {
		c.Channels = Default().Channels
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate clamps brightness into [0,1] and rejects settings the daemon
// cannot run with.
func (c *Config) Validate() error {
	switch {
	case !(c.Brightness >= 0):
		c.Brightness = 0
	case c.Brightness > 1:
		c.Brightness = 1
	}

	var errs []error
	if !(c.SecsPerUpdate > 0) {
		errs = append(errs, fmt.Errorf("secs_per_update must be positive, got %v", c.SecsPerUpdate))
	}
	if c.SPISpeedHz < 0 {
		errs = append(errs, fmt.Errorf("spi_speed_hz must not be negative, got %d", c.SPISpeedHz))
	}
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"patterns.scroll_speed", c.Patterns.ScrollSpeed},
		{"rand.falloff", c.Rand.Falloff},
		{"rand.max_speed", c.Rand.MaxSpeed},
	} {
		if math.IsNaN(float64(f.v)) || math.IsInf(float64(f.v), 0) {
			errs = append(errs, fmt.Errorf("%s must be finite, got %v", f.name, f.v))
		}
	}
	if c.Rand.Count < 0 {
		errs = append(errs, fmt.Errorf("rand.count must not be negative, got %d", c.Rand.Count))
	}
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("at least one channel is required"))
	}
	for i, ch := range c.Channels {
		if ch.LedCount < 0 {
			errs = append(errs, fmt.Errorf("channels[%d]: led_count must not be negative, got %d", i, ch.LedCount))
		}
		if ch.LedType != strip.APA102 && ch.LedType != strip.WS2801 {
			errs = append(errs, fmt.Errorf("channels[%d]: unknown led_type %d", i, ch.LedType))
		}
	}
	return errors.Join(errs...)
}

// Tick is the render period.
func (c *Config) Tick() time.Duration {
	return time.Duration(float64(c.SecsPerUpdate) * float64(time.Second))
}

// Names lists the channel names, falling back to the index for unnamed ones.
func (c *Config) Names() []string {
	out := make([]string, len(c.Channels))
	for i, ch := range c.Channels {
		out[i] = ch.Name
		if out[i] == "" {
			out[i] = fmt.Sprintf("strip%d", i)
		}
	}
	return out
}
