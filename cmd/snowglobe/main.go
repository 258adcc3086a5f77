package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snowglobe",
		Short: "Snow globe ornament: falling snow, shake animations and a BLE remote",
		Long: `snowglobe drives the snow globe ornament: a display of falling, piling
snow, an LED ring that animates when the globe is shaken, and a Bluetooth
UART link for the Bluefruit Connect app's colour picker and control pad.

Hardware that cannot be opened is replaced by a simulated part, and the
simulated parts are served on a websocket preview.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(flagLogLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "snowglobe.yaml", "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug | info | warn | error")

	rootCmd.AddCommand(newRunCmd(), newSimCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
