package main

import (
	"errors"
	"os"

	"github.com/coreman2200/funtimes-snowglobe/internal/config"
	"github.com/rs/zerolog/log"
)

// loadConfig reads the YAML config. A missing file means defaults; a broken
// one is an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("no config file; using defaults")
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Msg("config loaded")
	return cfg, nil
}
