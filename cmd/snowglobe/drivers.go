package main

import (
	"fmt"

	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/coreman2200/funtimes-snowglobe/internal/link"
	"github.com/coreman2200/funtimes-snowglobe/internal/motion"
	"github.com/coreman2200/funtimes-snowglobe/internal/preview"
	"github.com/coreman2200/funtimes-snowglobe/spi"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"tinygo.org/x/bluetooth"
)

// parts is the hardware picked for a run, real or simulated.
type parts struct {
	ring    display.Drawer
	display display.Drawer
	sensor  motion.Sensor
	link    link.Channel

	// set when something is simulated and needs the preview server
	pipe     *link.Pipe
	sim      *motion.Sim
	drawers  []*preview.Drawer
	selected map[string]string

	buses map[string]i2c.BusCloser
}

func (p *parts) simulated() bool {
	return p.pipe != nil || p.sim != nil || len(p.drawers) > 0
}

func (p *parts) Close() {
	for _, b := range p.buses {
		_ = b.Close()
	}
}

func (p *parts) bus(name string) (i2c.Bus, error) {
	if b, ok := p.buses[name]; ok {
		return b, nil
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	p.buses[name] = b
	return b, nil
}

func (p *parts) previewDrawer(name string, w, h int) *preview.Drawer {
	d := preview.NewDrawer(name, w, h)
	p.drawers = append(p.drawers, d)
	return d
}

// openParts selects a driver per part. A part that fails to open is
// replaced by its simulated version with a warning.
func openParts(cfg *config.Config) (*parts, error) {
	p := &parts{buses: map[string]i2c.BusCloser{}, selected: map[string]string{}}

	switch cfg.LED.Driver {
	case "spi":
		out, err := spi.OpenLedOutput(cfg.LED.Port, int(cfg.LED.Count))
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("led ring: %w", err)
		}
		p.ring = out.Drawer
		p.selected["led"] = out.String()
	case "console":
		p.ring = spi.ConsoleOutput(int(cfg.LED.Count)).Drawer
		p.selected["led"] = "console"
	case "preview":
		p.ring = p.previewDrawer("ring", int(cfg.LED.Count), 1)
		p.selected["led"] = "preview"
	default:
		p.Close()
		return nil, fmt.Errorf("unknown led driver %q", cfg.LED.Driver)
	}

	switch cfg.Display.Driver {
	case "ssd1306":
		d, err := p.openSSD1306(cfg.Display.Bus)
		if err != nil {
			log.Warn().Err(err).Str("driver", "ssd1306").Msg("display init failed; falling back to preview")
			p.display = p.previewDrawer("display", cfg.Display.Width, cfg.Display.Height)
			p.selected["display"] = "preview"
		} else {
			p.display = d
			p.selected["display"] = "ssd1306"
		}
	case "preview":
		p.display = p.previewDrawer("display", cfg.Display.Width, cfg.Display.Height)
		p.selected["display"] = "preview"
	default:
		p.Close()
		return nil, fmt.Errorf("unknown display driver %q", cfg.Display.Driver)
	}

	switch cfg.Sensor.Driver {
	case "lis3dh":
		s, err := p.openLIS3DH(cfg.Sensor)
		if err != nil {
			log.Warn().Err(err).Str("driver", "lis3dh").Msg("accelerometer init failed; falling back to sim")
			p.sim = motion.NewSim()
			p.sensor = p.sim
			p.selected["sensor"] = "sim"
		} else {
			p.sensor = s
			p.selected["sensor"] = "lis3dh"
		}
	case "sim":
		p.sim = motion.NewSim()
		p.sensor = p.sim
		p.selected["sensor"] = "sim"
	default:
		p.Close()
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.Sensor.Driver)
	}

	switch cfg.Link.Driver {
	case "ble":
		b, err := link.NewBLE(bluetooth.DefaultAdapter, cfg.Link.Name, log.With().Str("component", "ble").Logger())
		if err != nil {
			log.Warn().Err(err).Str("driver", "ble").Msg("bluetooth init failed; falling back to preview")
			p.pipe = link.NewPipe()
			p.link = p.pipe
			p.selected["link"] = "preview"
		} else {
			p.link = b
			p.selected["link"] = "ble"
		}
	case "preview":
		p.pipe = link.NewPipe()
		p.link = p.pipe
		p.selected["link"] = "preview"
	default:
		p.Close()
		return nil, fmt.Errorf("unknown link driver %q", cfg.Link.Driver)
	}

	return p, nil
}

func (p *parts) openSSD1306(busName string) (*ssd1306.Dev, error) {
	bus, err := p.bus(busName)
	if err != nil {
		return nil, err
	}
	opts := ssd1306.DefaultOpts
	return ssd1306.NewI2C(bus, &opts)
}

func (p *parts) openLIS3DH(cfg config.Sensor) (*motion.LIS3DH, error) {
	bus, err := p.bus(cfg.Bus)
	if err != nil {
		return nil, err
	}
	return motion.NewLIS3DH(bus, cfg.Addr, motion.RangeFromG(cfg.RangeG))
}
