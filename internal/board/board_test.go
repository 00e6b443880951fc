package board

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sweeney/devboard/internal/errcode"
	"github.com/sweeney/devboard/internal/gpio"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.toml")
	data := `
[[button]]
line = 4
pull_down = true
[[button]]
line = 5
[[button]]
line = 6
[[button]]
line = 7

[[led]]
line = 20
[[led]]
line = 21
[[led]]
pwm = "GPIO12"
pwm_hz = 500
[[led]]
pwm = "GPIO13"
pwm_hz = 500
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chip != gpio.DefaultChip {
		t.Errorf("Chip = %q, want default %q", cfg.Chip, gpio.DefaultChip)
	}
	if !cfg.Buttons[0].PullDown || cfg.Buttons[1].PullDown {
		t.Errorf("pull-downs not parsed: %+v", cfg.Buttons)
	}
	if cfg.LEDs[2].PWM != "GPIO12" || cfg.LEDs[2].PWMHz != 500 {
		t.Errorf("LED2 = %+v", cfg.LEDs[2])
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.toml")
	os.WriteFile(bad, []byte("chip = [unterminated"), 0644)
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error")
	}

	short := filepath.Join(dir, "short.toml")
	os.WriteFile(short, []byte("[[button]]\nline = 1\n"), 0644)
	if _, err := Load(short); !errors.Is(err, errcode.InvalidArgument) {
		t.Errorf("expected invalid_argument, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few buttons", func(c *Config) { c.Buttons = c.Buttons[:3] }},
		{"too many leds", func(c *Config) { c.LEDs = append(c.LEDs, LEDPin{Line: 30}) }},
		{"duplicate button line", func(c *Config) { c.Buttons[1].Line = c.Buttons[0].Line }},
		{"led shares button line", func(c *Config) { c.LEDs[0].Line = c.Buttons[2].Line }},
		{"negative line", func(c *Config) { c.Buttons[3].Line = -1 }},
		{"pwm without frequency", func(c *Config) { c.LEDs[3].PWMHz = 0 }},
		{"pwm pin twice", func(c *Config) { c.LEDs[2] = c.LEDs[3] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, errcode.InvalidArgument) {
				t.Errorf("expected invalid_argument, got %v", err)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	chip := gpio.NewFakeChip()
	hw, err := Open(Default(), chip)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for i, in := range hw.Buttons {
		if in == nil {
			t.Errorf("button %d not opened", i)
		}
	}
	if chip.Inputs[17] == nil || chip.Inputs[23] == nil {
		t.Error("expected inputs on lines 17 and 23")
	}
	if hw.LEDs[0].Out == nil || hw.LEDs[0].PWM != nil {
		t.Errorf("LED0 should be a boolean output: %+v", hw.LEDs[0])
	}
	if hw.LEDs[3].PWM == nil || chip.PWMs["GPIO18"] == nil {
		t.Error("LED3 should be the GPIO18 pwm pin")
	}

	if err := hw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !chip.Inputs[17].Closed || !chip.Outputs[13].Closed || !chip.PWMs["GPIO18"].Closed {
		t.Error("expected all lines closed")
	}
}

func TestOpenFailureReleasesLines(t *testing.T) {
	chip := gpio.NewFakeChip()
	busy := errors.New("device busy")
	chip.OutputErrors[6] = busy

	_, err := Open(Default(), chip)
	if !errors.Is(err, busy) {
		t.Fatalf("expected busy, got %v", err)
	}
	var ie *errcode.InitError
	if !errors.As(err, &ie) || ie.Channel != "LED1" {
		t.Errorf("expected InitError for LED1, got %v", err)
	}

	for line, in := range chip.Inputs {
		if !in.Closed {
			t.Errorf("input %d left open", line)
		}
	}
	if !chip.Outputs[5].Closed {
		t.Error("LED0 output left open")
	}
	if len(chip.PWMs) != 0 {
		t.Error("pwm should not have been requested")
	}
}
