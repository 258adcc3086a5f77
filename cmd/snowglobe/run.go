package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/coreman2200/funtimes-snowglobe/internal/globe"
	"github.com/coreman2200/funtimes-snowglobe/internal/preview"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"periph.io/x/host/v3"
)

type runFlags struct {
	led         string
	spiPort     string
	display     string
	sensor      string
	link        string
	previewAddr string
	fps         int
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the globe on the attached hardware",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flagConfig)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGlobe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&f.led, "led", "", "LED ring driver: spi | console | preview")
	cmd.Flags().StringVar(&f.spiPort, "spi-port", "", "SPI port for the LED ring (empty for the first one)")
	cmd.Flags().StringVar(&f.display, "display", "", "display driver: ssd1306 | preview")
	cmd.Flags().StringVar(&f.sensor, "sensor", "", "accelerometer driver: lis3dh | sim")
	cmd.Flags().StringVar(&f.link, "link", "", "remote link driver: ble | preview")
	cmd.Flags().StringVar(&f.previewAddr, "preview-addr", "", "listen address of the websocket preview")
	cmd.Flags().IntVar(&f.fps, "fps", 0, "frames per second (0 for unpaced)")
	return cmd
}

// apply overrides config values with flags given on the command line.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("led") {
		cfg.LED.Driver = f.led
	}
	if set("spi-port") {
		cfg.LED.Port = f.spiPort
	}
	if set("display") {
		cfg.Display.Driver = f.display
	}
	if set("sensor") {
		cfg.Sensor.Driver = f.sensor
	}
	if set("link") {
		cfg.Link.Driver = f.link
	}
	if set("preview-addr") {
		cfg.Preview.Addr = f.previewAddr
	}
	if set("fps") {
		cfg.FPS = f.fps
	}
}

func runGlobe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; hardware drivers will fall back")
	}

	p, err := openParts(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	g, err := globe.Build(cfg, globe.Hardware{
		Ring:    p.ring,
		Display: p.display,
		Sensor:  p.sensor,
		Link:    p.link,
		Log:     log.With().Str("component", "globe").Logger(),
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("led", p.selected["led"]).
		Str("display", p.selected["display"]).
		Str("sensor", p.selected["sensor"]).
		Str("link", p.selected["link"]).
		Int("fps", cfg.FPS).
		Msg("snow globe starting")

	if p.simulated() {
		srv := startPreview(cfg.Preview.Addr, p)
		g.OnFrame = func(g *globe.Globe) {
			if srv.Ready() {
				srv.Publish(g.Snapshot())
			}
		}
		g.OnState = srv.StateChanged
		g.OnFault = srv.Fault
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	return g.Start(ctx)
}

// previewServer couples the globe hooks to the websocket preview.
type previewServer struct {
	*preview.Server
	http *http.Server
}

func (s *previewServer) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func startPreview(addr string, p *parts) *previewServer {
	srv := preview.NewServer(p.pipe, p.sim)
	for _, d := range p.drawers {
		srv.Attach(d)
	}

	hs := &http.Server{
		Addr:         addr,
		Handler:      withCORS(srv.Routes()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("preview listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("preview server")
		}
	}()
	return &previewServer{Server: srv, http: hs}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
