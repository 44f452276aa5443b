package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings are the runtime knobs of the battle service.
type Settings struct {
	AssetsDir string        `env:"SPIRITCLASH_ASSETS_DIR" envDefault:"assets"`
	DBPath    string        `env:"SPIRITCLASH_DB_PATH" envDefault:"spiritclash.db"`
	HTTPAddr  string        `env:"SPIRITCLASH_HTTP_ADDR" envDefault:":8080"`
	TurnDelay time.Duration `env:"SPIRITCLASH_TURN_DELAY" envDefault:"1200ms"`
	Seed      int64         `env:"SPIRITCLASH_SEED" envDefault:"0"`
}

func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.TurnDelay < 0 {
		return Settings{}, fmt.Errorf("parse env: negative turn delay %s", s.TurnDelay)
	}
	return s, nil
}
