package animation

import (
	"time"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/model"
)

// Indicator is a fixed blink sequence reporting a device event.
type Indicator uint8

const (
	Start Indicator = iota
	Connected
	Disconnected
)

func (i Indicator) String() string {
	switch i {
	case Start:
		return "start"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

// Indicate plays ind on the ring. The start sweep lights each LED in turn
// with the primary colour alternation; connect and disconnect blink the
// whole ring blue and green.
func (e *Engine) Indicate(ind Indicator, primary model.ColorVal) {
	switch ind {
	case Start:
		for pass := 0; pass < snowglobe.SweepPasses; pass++ {
			for i := 0; i < e.Ring.Len(); i++ {
				e.Ring.Set(i, model.PickColor(primary, i))
				e.show()
				e.Clock.Sleep(snowglobe.SweepStep)
				e.Ring.Clear()
				e.show()
			}
		}
	case Connected:
		e.blink(model.NewColor(snowglobe.ConnectColor))
	case Disconnected:
		e.blink(model.NewColor(snowglobe.DisconnectColor))
	default:
		return
	}
	e.Log.Debug().Stringer("indicator", ind).Msg("indicated")
}

func (e *Engine) blink(c model.ColorVal) {
	for n := 0; n < snowglobe.IndicatorBlinks; n++ {
		e.Ring.Fill(c)
		e.show()
		e.Clock.Sleep(snowglobe.IndicatorOn)
		e.Ring.Clear()
		e.show()
		e.Clock.Sleep(snowglobe.IndicatorOff)
	}
}

// Flash holds the ring solid in c for d, then clears it.
func (e *Engine) Flash(c model.ColorVal, d time.Duration) {
	e.Ring.Fill(c)
	e.show()
	e.Clock.Sleep(d)
	e.Ring.Clear()
	e.show()
}
