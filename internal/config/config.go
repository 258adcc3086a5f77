package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"gopkg.in/yaml.v3"
)

type AnimationCfg struct {
	Kind     animation.Kind `yaml:"kind"`
	Duration time.Duration  `yaml:"duration"`
	Interval time.Duration  `yaml:"interval"`
	Color    uint32         `yaml:"color"`
	Shake    float64        `yaml:"shake"` // lower is more sensitive
}

type LED struct {
	Driver     string  `yaml:"driver"` // "spi" | "console" | "preview"
	Port       string  `yaml:"port"`   // spireg name, "" for the first one
	Count      uint8   `yaml:"count"`
	Brightness float64 `yaml:"brightness"`
}

type Display struct {
	Driver          string `yaml:"driver"` // "ssd1306" | "preview"
	Bus             string `yaml:"bus"`    // i2creg name
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	Background      string `yaml:"background"`
	BackgroundColor uint32 `yaml:"background_color"`
}

type Snow struct {
	Flakes      int    `yaml:"flakes"`
	Sheet       string `yaml:"sheet"`
	FlakeWidth  int    `yaml:"flake_width"`
	FlakeHeight int    `yaml:"flake_height"`
	Transparent uint32 `yaml:"transparent"`
	Color       uint32 `yaml:"color"`
	Steepness   int    `yaml:"steepness"`
}

type Sensor struct {
	Driver string `yaml:"driver"` // "lis3dh" | "sim"
	Bus    string `yaml:"bus"`
	Addr   uint16 `yaml:"addr"`
	RangeG int    `yaml:"range_g"` // 2, 4, 8 or 16
}

type Link struct {
	Driver string `yaml:"driver"` // "ble" | "preview"
	Name   string `yaml:"name"`
}

type Preview struct {
	Addr string `yaml:"addr"`
}

type Config struct {
	FPS  int    `yaml:"fps"` // 0 runs unpaced
	Seed uint64 `yaml:"seed,omitempty"`

	Animation AnimationCfg `yaml:"animation"`
	LED       LED          `yaml:"led"`
	Display   Display      `yaml:"display"`
	Snow      Snow         `yaml:"snow"`
	Sensor    Sensor       `yaml:"sensor"`
	Link      Link         `yaml:"link"`
	Preview   Preview      `yaml:"preview"`
}

// Default is the configuration the ornament ships with.
func Default() *Config {
	return &Config{
		FPS: 30,
		Animation: AnimationCfg{
			Kind:     animation.KindFromIndex(int(snowglobe.DefaultAnimation)),
			Duration: snowglobe.DefaultDuration,
			Interval: snowglobe.DefaultInterval,
			Color:    snowglobe.DefaultColor,
			Shake:    snowglobe.DefaultShake,
		},
		LED: LED{
			Driver:     "spi",
			Count:      snowglobe.RingSize,
			Brightness: 1,
		},
		Display: Display{
			Driver:          "ssd1306",
			Width:           snowglobe.DisplayWidth,
			Height:          snowglobe.DisplayHeight,
			Background:      snowglobe.Background,
			BackgroundColor: snowglobe.BackgroundFallback,
		},
		Snow: Snow{
			Flakes:      snowglobe.NumFlakes,
			Sheet:       snowglobe.FlakeSheet,
			FlakeWidth:  snowglobe.FlakeWidth,
			FlakeHeight: snowglobe.FlakeHeight,
			Transparent: snowglobe.FlakeTransparent,
			Color:       snowglobe.SnowColor,
			Steepness:   snowglobe.Steepness,
		},
		Sensor: Sensor{
			Driver: "lis3dh",
			Addr:   0x19,
			RangeG: 2,
		},
		Link: Link{
			Driver: "ble",
			Name:   snowglobe.DeviceName,
		},
		Preview: Preview{
			Addr: ":8080",
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys it
// changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

func (c *Config) Validate() error {
	var errs []error
	if c.FPS < 0 {
		errs = append(errs, fmt.Errorf("fps %d is negative", c.FPS))
	}
	if c.LED.Count == 0 {
		errs = append(errs, errors.New("led.count must be at least 1"))
	}
	if c.Display.Width < 1 || c.Display.Height < 1 {
		errs = append(errs, fmt.Errorf("display %dx%d has no area", c.Display.Width, c.Display.Height))
	}
	if c.Snow.Flakes < 0 {
		errs = append(errs, fmt.Errorf("snow.flakes %d is negative", c.Snow.Flakes))
	}
	if c.Snow.FlakeWidth < 1 || c.Snow.FlakeHeight < 1 {
		errs = append(errs, fmt.Errorf("flake size %dx%d", c.Snow.FlakeWidth, c.Snow.FlakeHeight))
	}
	if c.Snow.Steepness < 1 {
		errs = append(errs, fmt.Errorf("snow.steepness %d must be at least 1", c.Snow.Steepness))
	}
	switch c.Sensor.RangeG {
	case 2, 4, 8, 16:
	default:
		errs = append(errs, fmt.Errorf("sensor.range_g %d not one of 2, 4, 8, 16", c.Sensor.RangeG))
	}
	return errors.Join(errs...)
}
