package motion

import (
	"errors"
	"testing"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/internal/clock"
	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

type fixed struct {
	x, y, z float64
	calls   int
}

func (f *fixed) Acceleration() (float64, float64, float64, error) {
	f.calls++
	return f.x, f.y, f.z, nil
}

type recorder struct {
	played []animation.Kind
	params []animation.Params
	resets int
}

func (r *recorder) Play(k animation.Kind, p animation.Params) {
	r.played = append(r.played, k)
	r.params = append(r.params, p)
}

func (r *recorder) Reset() { r.resets++ }

func TestShakeAveragesMagnitude(t *testing.T) {
	clk := clock.NewMock(time.Unix(0, 0))
	s := &fixed{x: 12, y: 16}
	got, err := Shake(s, clk, 19, 5, 0)
	require.NoError(t, err)
	assert.True(t, got, "|(12,16,0)| is 20")
	assert.Equal(t, 5, s.calls)

	got, err = Shake(s, clk, 20, 5, 0)
	require.NoError(t, err)
	assert.False(t, got, "must exceed the threshold")
}

func TestShakeSpreadsSamplesOverWindow(t *testing.T) {
	start := time.Unix(0, 0)
	clk := clock.NewMock(start)
	_, err := Shake(&fixed{}, clk, 1, 4, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, clk.Now().Sub(start))
}

func TestShakeAtRest(t *testing.T) {
	got, err := Shake(NewSim(), clock.NewMock(time.Unix(0, 0)), 20, 5, 0)
	require.NoError(t, err)
	assert.False(t, got)
}

func newTrigger(s Sensor) (*Trigger, *recorder, *config.Settings) {
	st := config.DefaultSettings()
	rec := &recorder{}
	return &Trigger{
		Sensor:   s,
		Clock:    clock.NewMock(time.Unix(0, 0)),
		Settings: &st,
		Player:   rec,
		Field:    rec,
		Samples:  5,
		Log:      zerolog.Nop(),
	}, rec, &st
}

func TestTriggerPlaysThenResets(t *testing.T) {
	sim := NewSim()
	tr, rec, st := newTrigger(sim)
	st.SelectAnimation(2)

	assert.False(t, tr.Check())
	assert.Empty(t, rec.played)

	sim.Jolt(5)
	assert.True(t, tr.Check())
	require.Equal(t, []animation.Kind{animation.Strobe}, rec.played)
	assert.Equal(t, st.Params(), rec.params[0])
	assert.Equal(t, 1, rec.resets)
	assert.Equal(t, 1, tr.Fired)

	assert.False(t, tr.Check(), "jolt used up")
}

func TestTriggerIgnoresSensorErrors(t *testing.T) {
	sim := NewSim()
	sim.Err = errors.New("bus busy")
	sim.Jolt(5)
	tr, rec, _ := newTrigger(sim)
	assert.False(t, tr.Check())
	assert.Zero(t, rec.resets)
}

func TestTriggerThresholdIsLive(t *testing.T) {
	tr, rec, st := newTrigger(&fixed{z: StandardGravity})
	st.Shake = 5
	assert.True(t, tr.Check(), "lower threshold is more sensitive")
	assert.Len(t, rec.played, 1)
}

// chip is a LIS3DH register file behind an I2C bus. A write sets the
// register pointer and stores what follows it; a read continues from the
// pointer. Bit 7 of the register byte is the auto-increment flag.
type chip struct {
	addr uint16
	regs [0x40]byte
	ptr  byte
	err  error
}

func newChip(addr uint16) *chip {
	c := &chip{addr: addr}
	c.regs[0x0F] = 0x33
	return c
}

func (c *chip) String() string { return "chip" }

func (c *chip) SetSpeed(f physic.Frequency) error { return nil }

func (c *chip) Tx(addr uint16, w, r []byte) error {
	if c.err != nil {
		return c.err
	}
	if addr != c.addr {
		return errors.New("nack")
	}
	if len(w) > 0 {
		c.ptr = w[0] &^ 0x80
		for i, b := range w[1:] {
			c.regs[int(c.ptr)+i] = b
		}
	}
	for i := range r {
		r[i] = c.regs[int(c.ptr)+i]
	}
	return nil
}

func (c *chip) sample(x, y, z int16) {
	for i, v := range []int16{x, y, z} {
		c.regs[0x28+2*i] = byte(uint16(v))
		c.regs[0x29+2*i] = byte(uint16(v) >> 8)
	}
}

func TestLIS3DHInitAndRead(t *testing.T) {
	c := newChip(DefaultAddr)
	d, err := NewLIS3DH(c, DefaultAddr, Range2G)
	require.NoError(t, err)
	assert.Equal(t, byte(0x07), c.regs[0x20]&0x07, "all axes on")
	assert.NotZero(t, c.regs[0x23]&0x08, "high resolution")
	assert.Equal(t, byte(0), (c.regs[0x23]>>4)&0x03)

	c.sample(16380, -16380, 0)
	x, y, z, err := d.Acceleration()
	require.NoError(t, err)
	assert.InDelta(t, StandardGravity, x, 1e-3)
	assert.InDelta(t, -StandardGravity, y, 1e-3)
	assert.InDelta(t, 0, z, 1e-9)
}

func TestLIS3DHRangeBits(t *testing.T) {
	c := newChip(0x18)
	d, err := NewLIS3DH(c, 0x18, RangeFromG(16))
	require.NoError(t, err)
	assert.Equal(t, byte(3), (c.regs[0x23]>>4)&0x03)

	c.sample(1365, 0, 0)
	x, _, _, err := d.Acceleration()
	require.NoError(t, err)
	assert.InDelta(t, StandardGravity, x, 1e-3, "1365 counts per g at 16G")
}

func TestLIS3DHWrongDevice(t *testing.T) {
	c := newChip(DefaultAddr)
	c.regs[0x0F] = 0x44
	_, err := NewLIS3DH(c, DefaultAddr, Range2G)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x19")

	_, err = NewLIS3DH(newChip(0x18), DefaultAddr, Range2G)
	require.Error(t, err, "nothing answers at 0x19")
}

func TestRangeFromG(t *testing.T) {
	assert.Equal(t, Range2G, RangeFromG(2))
	assert.Equal(t, Range4G, RangeFromG(4))
	assert.Equal(t, Range8G, RangeFromG(8))
	assert.Equal(t, Range2G, RangeFromG(3))
}
