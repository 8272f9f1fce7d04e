// Package config loads the optional TOML configuration file.
// Command-line flags set explicitly take precedence over file values;
// the file takes precedence over built-in defaults.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sweeney/led-sequencer/internal/gpio"
	"github.com/sweeney/led-sequencer/internal/logic"
)

// Duration is a time.Duration read from a TOML string such as "20ms".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Pins holds BCM line offsets.
type Pins struct {
	LEDs   []int `toml:"leds"`
	Button int   `toml:"button"`
}

// Config is the daemon configuration.
type Config struct {
	Chip      string   `toml:"chip"`
	Pattern   string   `toml:"pattern"`
	Pins      Pins     `toml:"pins"`
	Debounce  Duration `toml:"debounce"`  // kernel edge debounce, 0 disables
	Broker    string   `toml:"broker"`    // empty disables MQTT
	HTTP      string   `toml:"http"`      // empty disables the status server
	Heartbeat Duration `toml:"heartbeat"` // 0 disables
}

// Default returns the built-in configuration.
func Default() Config {
	pins := gpio.DefaultLEDPins()
	return Config{
		Chip:      gpio.DefaultChip,
		Pattern:   logic.DefaultTable.Name,
		Pins:      Pins{LEDs: pins[:], Button: gpio.DefaultPinButton},
		Heartbeat: Duration(15 * time.Minute),
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the hardware layer cannot use.
func (c Config) Validate() error {
	if c.Chip == "" {
		return fmt.Errorf("chip must not be empty")
	}
	if _, err := logic.LookupTable(c.Pattern); err != nil {
		return err
	}
	if len(c.Pins.LEDs) != gpio.NumLEDs {
		return fmt.Errorf("pins.leds: want %d pins, got %d", gpio.NumLEDs, len(c.Pins.LEDs))
	}

	all := append([]int{c.Pins.Button}, c.Pins.LEDs...)
	seen := make(map[int]bool, len(all))
	for _, p := range all {
		if p < 0 {
			return fmt.Errorf("pins: negative pin %d", p)
		}
		if seen[p] {
			return fmt.Errorf("pins: pin %d used more than once", p)
		}
		seen[p] = true
	}

	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative")
	}
	return nil
}

// LEDPins returns the LED pins as a fixed-size array. Call Validate first.
func (c Config) LEDPins() [gpio.NumLEDs]int {
	var out [gpio.NumLEDs]int
	copy(out[:], c.Pins.LEDs)
	return out
}

// Table returns the LED pattern table named by Pattern.
func (c Config) Table() (logic.PatternTable, error) {
	return logic.LookupTable(c.Pattern)
}
