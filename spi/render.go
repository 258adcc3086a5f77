package spi

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	pspi "periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
)

// RefreshRate is the WS2812 bit rate in kHz before the 3x SPI expansion.
const RefreshRate physic.Frequency = 800

// LedOutput is where the ring colours end up: nrzled on an SPI port when one
// exists, the console otherwise.
type LedOutput struct {
	Drawer display.Drawer
	Spi    bool
}

func (o *LedOutput) String() string {
	if o.Spi {
		return "spi"
	}
	return "console"
}

// OpenLedOutput opens the named SPI port ("" for the first available one)
// and drives count pixels on it. When no port can be opened it falls back to
// printing the ring at the console.
func OpenLedOutput(port string, count int) (*LedOutput, error) {
	ss, err := spireg.Open(port)
	if err != nil {
		log.Warn().Err(err).Str("port", port).Msg("no SPI port for the LED ring, printing at the console")
		return ConsoleOutput(count), nil
	}

	d, err := NewLedDrawer(ss, count)
	if err != nil {
		_ = ss.Close()
		return nil, err
	}
	return &LedOutput{Drawer: d, Spi: true}, nil
}

// ConsoleOutput renders the ring as coloured blocks on the terminal.
func ConsoleOutput(count int) *LedOutput {
	return &LedOutput{Drawer: screen.New(count), Spi: false}
}

// NewLedDrawer wraps an already opened SPI port with the nrzled encoder.
func NewLedDrawer(p pspi.Port, count int) (*nrzled.Dev, error) {
	var Options nrzled.Opts = nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      ((RefreshRate * 3) + 100) * physic.KiloHertz,
	}

	d, err := nrzled.NewSPI(p, &Options)
	if err != nil {
		return nil, fmt.Errorf("nrzled on %s: %w", p, err)
	}
	if err := d.Halt(); err != nil {
		return nil, fmt.Errorf("nrzled blank: %w", err)
	}
	return d, nil
}
