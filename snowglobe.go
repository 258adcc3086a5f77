// Package snowglobe holds the compile-time defaults of the snow globe
// ornament: the values the device boots with before any YAML config or
// companion-app command changes them.
package snowglobe

import "time"

const DeviceName = "SNOWGLOBE"

// Animation playback.
const (
	DefaultAnimation uint8         = 0 // index into rotation, pulse, strobe, sparkle
	DefaultDuration  time.Duration = 5 * time.Second
	DefaultInterval  time.Duration = 100 * time.Millisecond
	DefaultColor     uint32        = 0xFF0000
	DefaultShake     float64       = 20 // lower is more sensitive

	MinInterval  time.Duration = 50 * time.Millisecond
	IntervalStep time.Duration = 50 * time.Millisecond
	MinDuration  time.Duration = time.Second
	DurationStep time.Duration = time.Second
)

// Hardware geometry.
const (
	RingSize      uint8 = 10
	DisplayWidth  int   = 240
	DisplayHeight int   = 240
)

// Snow field.
const (
	NumFlakes          int    = 50
	FlakeWidth         int    = 4
	FlakeHeight        int    = 4
	FlakeTransparent   uint32 = 0x000000
	SnowColor          uint32 = 0xFFFFFF
	BackgroundFallback uint32 = 0x000000
	Steepness          int    = 2

	FlakeSheet = "flakes_sheet.bmp"
	Background = "background.bmp"
)

// Shake sampling window.
const (
	ShakeSamples int           = 5
	ShakeWindow  time.Duration = 0
)

// Indicator timings and colours.
const (
	FlashDuration   time.Duration = 500 * time.Millisecond
	IndicatorBlinks int           = 5
	IndicatorOn     time.Duration = 100 * time.Millisecond
	IndicatorOff    time.Duration = 100 * time.Millisecond
	SweepStep       time.Duration = 50 * time.Millisecond
	SweepPasses     int           = 2
	ConnectColor    uint32        = 0x0000FF
	DisconnectColor uint32        = 0x00FF00
)
