package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

var (
	cfgFile = "hotseat-chess/config.json"
)

const addrEnv = "HOTSEAT_ADDR"

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ServerConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
	StaticDir      string   `json:"static_dir"`
}

type GameConfig struct {
	AnimationTimeoutMS int `json:"animation_timeout_ms"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

type Config struct {
	Server ServerConfig `json:"server"`
	Game   GameConfig   `json:"game"`
	Log    LogConfig    `json:"log"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":3000",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			StaticDir:      "./web",
		},
		Game: GameConfig{
			AnimationTimeoutMS: 2000,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// InitConfig loads the config file from the XDG config dirs, falling back to defaults.
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		cfg := Default()
		return finish(&cfg)
	}
	return Load(absPath)
}

// Load reads the config at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := readCfgFile(path, &cfg); err != nil {
		return nil, err
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	if addr := os.Getenv(addrEnv); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readCfgFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return &InvalidConfig{err: fmt.Sprintf("%s: %v", path, err)}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return &InvalidConfig{"server.addr must not be empty"}
	}
	if c.Game.AnimationTimeoutMS <= 0 {
		return &InvalidConfig{"game.animation_timeout_ms must be positive"}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &InvalidConfig{fmt.Sprintf("log.level: %v", err)}
	}
	return nil
}

func (c *Config) AnimationTimeout() time.Duration {
	return time.Duration(c.Game.AnimationTimeoutMS) * time.Millisecond
}

// Logger builds the process logger described by the log section.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if c.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
