package command

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/coreman2200/funtimes-snowglobe/internal/link"
	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/rs/zerolog"
)

// Ring is what a command does to the LEDs.
type Ring interface {
	Play(k animation.Kind, p animation.Params)
	Flash(c model.ColorVal, d time.Duration)
}

type Dispatcher struct {
	Link     link.Channel
	Settings *config.Settings
	Ring     Ring
	Log      zerolog.Logger

	pending []byte
	scratch [64]byte

	Applied int
	Dropped int
}

func NewDispatcher(ch link.Channel, s *config.Settings, r Ring, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{Link: ch, Settings: s, Ring: r, Log: log}
}

// Poll reads whatever the link has buffered and applies at most one packet.
// It returns immediately when there is nothing to do. A packet cut short
// waits for the next poll; anything undecodable is dropped.
func (d *Dispatcher) Poll() (Packet, bool) {
	if d.Link.Buffered() == 0 && len(d.pending) == 0 {
		return Packet{}, false
	}
	for d.Link.Buffered() > 0 {
		n, err := d.Link.Read(d.scratch[:])
		if n > 0 {
			d.pending = append(d.pending, d.scratch[:n]...)
		}
		if err != nil || n == 0 {
			break
		}
	}
	if over := len(d.pending) - link.MaxBuffered; over > 0 {
		d.pending = append(d.pending[:0], d.pending[over:]...)
		d.Dropped += over
		d.Log.Debug().Int("bytes", over).Msg("receive backlog overflow")
	}

	for len(d.pending) > 0 {
		d.resync()
		p, n, err := Decode(d.pending)
		if errors.Is(err, ErrIncomplete) {
			return Packet{}, false
		}
		if err != nil {
			// a packet cut short by a lost link is followed by the next
			// start byte; decode from there rather than losing both
			if i := bytes.IndexByte(d.pending[1:n], Start); i >= 0 {
				n = i + 1
			}
		}
		d.pending = append(d.pending[:0], d.pending[n:]...)
		if err != nil {
			d.Dropped++
			d.Log.Debug().Err(err).Msg("dropped packet")
			continue
		}
		d.Apply(p)
		return p, true
	}
	return Packet{}, false
}

// resync discards everything before the next start byte.
func (d *Dispatcher) resync() {
	i := bytes.IndexByte(d.pending, Start)
	switch {
	case i < 0:
		d.Dropped += len(d.pending)
		d.pending = d.pending[:0]
	case i > 0:
		d.pending = append(d.pending[:0], d.pending[i:]...)
	}
}

// Reset forgets any partial packet, for when the link drops mid-packet.
func (d *Dispatcher) Reset() {
	if len(d.pending) > 0 {
		d.Log.Debug().Int("bytes", len(d.pending)).Msg("discarding partial packet")
	}
	d.pending = d.pending[:0]
}

// Pending is the number of received bytes not yet decoded.
func (d *Dispatcher) Pending() int {
	return len(d.pending)
}

// Apply performs p's effect. Every button press replays the current
// animation with the updated settings.
func (d *Dispatcher) Apply(p Packet) {
	s := d.Settings
	switch p.Type {
	case ColorPacket:
		s.SetColor(p.Color)
		d.Log.Info().Str("color", fmt.Sprintf("#%06X", p.Color.Color())).Msg("colour set")
		d.Ring.Flash(p.Color, snowglobe.FlashDuration)
	case ButtonPacket:
		if !p.Pressed {
			return
		}
		switch p.Button {
		case Up:
			s.SpeedUp()
		case Down:
			s.SpeedDown()
		case Left:
			s.DurationDown()
		case Right:
			s.DurationUp()
		default:
			s.SelectAnimation(p.Button.Index())
		}
		d.Log.Info().Stringer("button", p.Button).Stringer("animation", s.Animation).
			Dur("duration", s.Duration).Dur("interval", s.Interval).Msg("button")
		d.Ring.Play(s.Animation, s.Params())
	default:
		d.Log.Debug().Stringer("type", p.Type).Msg("ignored sensor packet")
		return
	}
	d.Applied++
}
