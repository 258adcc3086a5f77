package motion

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers/lis3dh"
)

// Range is the LIS3DH full scale setting.
type Range = lis3dh.Range

const (
	Range2G  Range = lis3dh.RANGE_2_G
	Range4G  Range = lis3dh.RANGE_4_G
	Range8G  Range = lis3dh.RANGE_8_G
	Range16G Range = lis3dh.RANGE_16_G
)

// RangeFromG maps 2, 4, 8 or 16 to a Range; anything else is 2G.
func RangeFromG(g int) Range {
	switch g {
	case 4:
		return Range4G
	case 8:
		return Range8G
	case 16:
		return Range16G
	}
	return Range2G
}

// DefaultAddr is the LIS3DH with SDO pulled high, as on the ornament board.
const DefaultAddr uint16 = lis3dh.Address1

// micro-g to m/s²
const microG = StandardGravity / 1e6

// LIS3DH is the accelerometer of the ornament's board.
type LIS3DH struct {
	bus  i2c.Bus
	addr uint16
	dev  lis3dh.Device
}

// NewLIS3DH checks the chip answers at addr, then configures it for 400Hz
// high resolution reads at range r.
func NewLIS3DH(bus i2c.Bus, addr uint16, r Range) (*LIS3DH, error) {
	if r > Range16G {
		return nil, fmt.Errorf("lis3dh: invalid range %d", r)
	}
	dev := lis3dh.New(registerBus{bus})
	dev.Address = addr
	if !dev.Connected() {
		return nil, fmt.Errorf("lis3dh: no device at %#x on %s", addr, bus)
	}
	dev.Configure()
	dev.SetRange(r)
	return &LIS3DH{bus: bus, addr: addr, dev: dev}, nil
}

func (d *LIS3DH) String() string {
	return fmt.Sprintf("lis3dh{%s %#x}", d.bus, d.addr)
}

func (d *LIS3DH) Acceleration() (x, y, z float64, err error) {
	ux, uy, uz, err := d.dev.ReadAcceleration()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("lis3dh: read: %w", err)
	}
	return float64(ux) * microG, float64(uy) * microG, float64(uz) * microG, nil
}

// registerBus runs the tinygo driver over a periph bus. Tx has the same
// shape on both sides; the register helpers are for driver releases that
// still call them.
type registerBus struct {
	i2c.Bus
}

func (b registerBus) Tx(addr uint16, w, r []byte) error {
	return b.Bus.Tx(addr, w, r)
}

func (b registerBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Bus.Tx(uint16(addr), []byte{reg}, buf)
}

func (b registerBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}
