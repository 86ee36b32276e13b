package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/mkessler-dev/cardtable-backend/internal/room"
)

type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	// SpectatorMax caps spectators per room; 0 leaves it unbounded.
	SpectatorMax int `envconfig:"SPECTATOR_MAX" default:"0"`

	// Mode selects who owns document correctness: "authoritative" (server
	// applies actions) or "relay" (clients publish, last writer wins).
	Mode string `envconfig:"ROOM_MODE" default:"authoritative"`

	StaticDir   string `envconfig:"STATIC_DIR" default:"./public"`
	DefaultRoom string `envconfig:"DEFAULT_ROOM" default:"main"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Mode != string(room.ModeRelay) {
		cfg.Mode = string(room.ModeAuthoritative)
	}
	return cfg, nil
}
