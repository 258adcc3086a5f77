package main

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	snowglobe "github.com/coreman2200/funtimes-snowglobe"
	"github.com/coreman2200/funtimes-snowglobe/internal/animation"
	"github.com/coreman2200/funtimes-snowglobe/internal/clock"
	"github.com/coreman2200/funtimes-snowglobe/internal/command"
	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/coreman2200/funtimes-snowglobe/internal/driver/fake"
	"github.com/coreman2200/funtimes-snowglobe/internal/globe"
	"github.com/coreman2200/funtimes-snowglobe/internal/link"
	"github.com/coreman2200/funtimes-snowglobe/internal/motion"
	"github.com/coreman2200/funtimes-snowglobe/internal/termview"
	"github.com/coreman2200/funtimes-snowglobe/model"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type simFlags struct {
	frames    int
	seed      uint64
	shakeAt   int
	connectAt int
	packets   []string
	cols      int
}

func newSimCmd() *cobra.Command {
	f := &simFlags{}
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Step a simulated globe on a virtual clock and print the last frame",
		Long: `sim runs the globe without hardware or wall-clock waits. Packets are
fed right after the remote connects; each is hex bytes, c:RRGGBB for a colour
or b:N for a press of control pad button N.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = f.seed
			}
			pkts, err := parsePackets(f.packets)
			if err != nil {
				return err
			}
			out, err := simulate(cfg, f, pkts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&f.frames, "frames", 300, "number of loop iterations")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "random seed")
	cmd.Flags().IntVar(&f.shakeAt, "shake-at", -1, "frame at which the globe is shaken (-1 for never)")
	cmd.Flags().IntVar(&f.connectAt, "connect-at", -1, "frame at which the remote connects (-1 for never, 0 when packets are given)")
	cmd.Flags().StringSliceVar(&f.packets, "packets", nil, "packets to send once connected")
	cmd.Flags().IntVar(&f.cols, "cols", 48, "width of the printed display")
	return cmd
}

// simKeep is how many frames the in-memory drivers retain; the printed
// snapshot comes from the renderer, not from them.
const simKeep = 2

type simRun struct {
	g       *globe.Globe
	clock   *clock.Mock
	ring    *fake.Driver
	display *fake.Driver
}

func simulate(cfg *config.Config, f *simFlags, pkts [][]byte) (string, error) {
	run, err := runSim(cfg, f, pkts)
	if err != nil {
		return "", err
	}
	return termview.Render(run.g.Snapshot(), f.cols), nil
}

func runSim(cfg *config.Config, f *simFlags, pkts [][]byte) (*simRun, error) {
	clk := clock.NewMock(time.Unix(0, 0))
	pipe := link.NewPipe()
	sensor := motion.NewSim()
	ring := fake.New(int(cfg.LED.Count), 1)
	ring.Keep = simKeep
	display := fake.New(cfg.Display.Width, cfg.Display.Height)
	display.Keep = simKeep

	g, err := globe.Build(cfg, globe.Hardware{
		Ring:    ring,
		Display: display,
		Sensor:  sensor,
		Link:    pipe,
		Clock:   clk,
		Rand:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9E3779B97F4A7C15)),
		Log:     log.With().Str("component", "globe").Logger(),
	})
	if err != nil {
		return nil, err
	}

	connectAt := f.connectAt
	if connectAt < 0 && len(pkts) > 0 {
		connectAt = 0
	}
	var step time.Duration
	if cfg.FPS > 0 {
		step = time.Second / time.Duration(cfg.FPS)
	}

	g.Anim.Indicate(animation.Start, g.Settings.Color)
	for i := 0; i < f.frames; i++ {
		if i == connectAt {
			pipe.SetConnected(true)
		}
		if i == connectAt+1 {
			for _, p := range pkts {
				pipe.Feed(p)
			}
		}
		if i == f.shakeAt {
			sensor.Jolt(snowglobe.ShakeSamples)
		}
		g.Step()
		clk.Advance(step)
	}

	snap := g.Snapshot()
	log.Info().
		Int("frames", snap.Frame).
		Int("landings", snap.Landings).
		Int("resets", snap.Resets).
		Int("shakes", snap.Shakes).
		Int("applied", g.Dispatch.Applied).
		Dur("virtual", clk.Now().Sub(time.Unix(0, 0))).
		Msg("simulation done")
	return &simRun{g: g, clock: clk, ring: ring, display: display}, nil
}

// parsePackets turns --packets values into wire bytes.
func parsePackets(in []string) ([][]byte, error) {
	out := make([][]byte, 0, len(in))
	for _, s := range in {
		switch {
		case strings.HasPrefix(s, "c:"):
			v, err := strconv.ParseUint(strings.TrimPrefix(s[2:], "#"), 16, 32)
			if err != nil {
				return nil, fmt.Errorf("colour packet %q: %w", s, err)
			}
			out = append(out, command.Encode(command.NewColor(model.NewColor(uint32(v)))))
		case strings.HasPrefix(s, "b:"):
			b := command.Button(0)
			if len(s) == 3 {
				b = command.Button(s[2])
			}
			if !b.Valid() {
				return nil, fmt.Errorf("button packet %q: want b:1 to b:8", s)
			}
			out = append(out, command.Encode(command.NewButton(b, true)))
		default:
			b, err := hex.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("packet %q: %w", s, err)
			}
			out = append(out, b)
		}
	}
	return out, nil
}
