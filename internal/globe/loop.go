package globe

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
)

// Run plays the start indicator and steps until ctx is done, at most FPS
// times a second. The ring is blanked on the way out.
func (g *Globe) Run(ctx context.Context) error {
	g.Anim.Indicate(animation.Start, g.Settings.Color)
	defer g.halt()

	var tick <-chan time.Time
	if g.FPS > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(g.FPS))
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		g.Step()

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

// Start runs the globe until ctx is done or the process is interrupted.
func (g *Globe) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	go func() {
		select {
		case sig := <-c:
			g.Log.Info().Str("signal", sig.String()).Msg("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return g.Run(ctx)
}

func (g *Globe) halt() {
	g.Ring.Clear()
	if err := g.Ring.Show(); err != nil {
		g.Log.Debug().Err(err).Msg("ring clear on exit")
	}
}
