// Package board describes how the buttons and LEDs are wired and brings
// the lines up.
package board

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/sweeney/devboard/internal/button"
	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
	"github.com/sweeney/devboard/internal/led"
)

// ButtonPin is the input line of one button.
type ButtonPin struct {
	Line     int  `toml:"line"`
	PullDown bool `toml:"pull_down"`
}

// LEDPin is the output of one LED: a GPIO line, or a PWM pin when PWM is
// set.
type LEDPin struct {
	Line  int    `toml:"line"`
	PWM   string `toml:"pwm,omitempty"`
	PWMHz int    `toml:"pwm_hz,omitempty"`
}

// Config is the pin map, in button and LED ID order.
type Config struct {
	Chip    string      `toml:"chip"`
	Buttons []ButtonPin `toml:"button"`
	LEDs    []LEDPin    `toml:"led"`
}

// Default is the Raspberry Pi wiring: buttons on BCM 17, 27, 22, 23 with
// pull-downs; LEDs on 5, 6, 13 and the hardware PWM pin GPIO18.
func Default() Config {
	return Config{
		Chip: gpio.DefaultChip,
		Buttons: []ButtonPin{
			{Line: 17, PullDown: true},
			{Line: 27, PullDown: true},
			{Line: 22, PullDown: true},
			{Line: 23, PullDown: true},
		},
		LEDs: []LEDPin{
			{Line: 5},
			{Line: 6},
			{Line: 13},
			{PWM: "GPIO18", PWMHz: 1000},
		},
	}
}

// Load reads a pin map from a TOML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read board config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse board config: %w", err)
	}
	if cfg.Chip == "" {
		cfg.Chip = gpio.DefaultChip
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks counts, line numbers and PWM settings.
func (c Config) Validate() error {
	if len(c.Buttons) != button.Count {
		return fmt.Errorf("board: %d buttons, want %d: %w", len(c.Buttons), button.Count, errcode.InvalidArgument)
	}
	if len(c.LEDs) != led.Count {
		return fmt.Errorf("board: %d leds, want %d: %w", len(c.LEDs), led.Count, errcode.InvalidArgument)
	}

	used := make(map[int]string)
	claim := func(line int, owner string) error {
		if line < 0 {
			return fmt.Errorf("board: %s: negative line %d: %w", owner, line, errcode.InvalidArgument)
		}
		if prev, ok := used[line]; ok {
			return fmt.Errorf("board: line %d used by %s and %s: %w", line, prev, owner, errcode.InvalidArgument)
		}
		used[line] = owner
		return nil
	}

	for i, b := range c.Buttons {
		if err := claim(b.Line, button.ID(i).String()); err != nil {
			return err
		}
	}
	pwms := make(map[string]bool)
	for i, l := range c.LEDs {
		id := led.ID(i).String()
		if l.PWM == "" {
			if err := claim(l.Line, id); err != nil {
				return err
			}
			continue
		}
		if l.PWMHz <= 0 {
			return fmt.Errorf("board: %s: pwm frequency %d: %w", id, l.PWMHz, errcode.InvalidArgument)
		}
		if pwms[l.PWM] {
			return fmt.Errorf("board: pwm pin %s used twice: %w", l.PWM, errcode.InvalidArgument)
		}
		pwms[l.PWM] = true
	}
	return nil
}
