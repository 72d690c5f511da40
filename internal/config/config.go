// Package config loads process configuration from file, environment and
// flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/santorosario/rosario/internal/audio"
	"github.com/santorosario/rosario/internal/models"
)

// Audio backends.
const (
	BackendProcess   = "process"
	BackendSimulated = "simulated"
)

// Configuration errors.
var (
	ErrInvalidBackend = errors.New("invalid audio backend")
	ErrInvalidLogging = errors.New("invalid logging configuration")
	ErrInvalidAddress = errors.New("invalid address")
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Media    MediaConfig    `mapstructure:"media"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Profiles ProfilesConfig `mapstructure:"profiles"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MediaConfig locates the audio clips.
type MediaConfig struct {
	Dir       string `mapstructure:"dir"`
	Extension string `mapstructure:"extension"`
}

// AudioConfig selects the playback backend.
type AudioConfig struct {
	Backend       string        `mapstructure:"backend"`
	Player        string        `mapstructure:"player"`
	SimulatedClip time.Duration `mapstructure:"simulated_clip"`
}

// PlaybackConfig tunes the controller.
type PlaybackConfig struct {
	ReplyDelay       time.Duration `mapstructure:"reply_delay"`
	SkipMissingAudio bool          `mapstructure:"skip_missing_audio"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RateLimit is a per-method token bucket.
type RateLimit struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// RemoteConfig configures the gRPC remote control.
type RemoteConfig struct {
	Addr             string               `mapstructure:"addr"`
	RateLimitEnabled bool                 `mapstructure:"rate_limit_enabled"`
	RateLimit        map[string]RateLimit `mapstructure:"rate_limit"`
}

// HTTPConfig configures the status server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// ProfilesConfig adds a profile search directory.
type ProfilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// TUIConfig configures the terminal player.
type TUIConfig struct {
	Theme string `mapstructure:"theme"`
}

// DefaultPlayerCommand runs ffplay with volume and tempo placeholders.
const DefaultPlayerCommand = audio.DefaultPlayerCommand

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: defaultDatabasePath()},
		Media:    MediaConfig{Dir: "./media"},
		Audio: AudioConfig{
			Backend:       BackendProcess,
			Player:        DefaultPlayerCommand,
			SimulatedClip: 2 * time.Second,
		},
		Playback: PlaybackConfig{ReplyDelay: time.Second},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
		Remote: RemoteConfig{
			Addr:             "127.0.0.1:7480",
			RateLimitEnabled: true,
		},
		HTTP: HTTPConfig{Addr: "127.0.0.1:7481"},
		TUI:  TUIConfig{Theme: "default"},
	}
}

// Load reads configuration from path (or the default search locations when
// empty), the ROSARIO_ environment and defaults, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ROSARIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Media.Dir = expandHome(cfg.Media.Dir)
	cfg.Profiles.Dir = expandHome(cfg.Profiles.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	validation := &models.ValidationErrors{}

	switch c.Audio.Backend {
	case BackendProcess:
		if strings.TrimSpace(c.Audio.Player) == "" {
			validation.AddMessage("audio.player", "player command is required for the process backend")
		}
	case BackendSimulated:
		if c.Audio.SimulatedClip <= 0 {
			validation.AddMessage("audio.simulated_clip", "must be positive")
		}
	default:
		validation.AddMessage("audio.backend", fmt.Sprintf("%v: %q", ErrInvalidBackend, c.Audio.Backend))
	}

	if c.Playback.ReplyDelay < 0 {
		validation.AddMessage("playback.reply_delay", "must not be negative")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		validation.AddMessage("logging.format", fmt.Sprintf("%v: format %q", ErrInvalidLogging, c.Logging.Format))
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		validation.AddMessage("database.path", "is required")
	}
	for field, addr := range map[string]string{"remote.addr": c.Remote.Addr, "http.addr": c.HTTP.Addr} {
		if !strings.Contains(addr, ":") {
			validation.AddMessage(field, fmt.Sprintf("%v: %q", ErrInvalidAddress, addr))
		}
	}
	for method, limit := range c.Remote.RateLimit {
		if limit.RPS <= 0 || limit.Burst < 1 {
			validation.AddMessage("remote.rate_limit."+method, "rps and burst must be positive")
		}
	}

	return validation.Err()
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("media.dir", d.Media.Dir)
	v.SetDefault("media.extension", d.Media.Extension)
	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("audio.player", d.Audio.Player)
	v.SetDefault("audio.simulated_clip", d.Audio.SimulatedClip)
	v.SetDefault("playback.reply_delay", d.Playback.ReplyDelay)
	v.SetDefault("playback.skip_missing_audio", d.Playback.SkipMissingAudio)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("remote.addr", d.Remote.Addr)
	v.SetDefault("remote.rate_limit_enabled", d.Remote.RateLimitEnabled)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("profiles.dir", d.Profiles.Dir)
	v.SetDefault("tui.theme", d.TUI.Theme)
}

// searchDirs lists config directories in priority order.
func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "rosario"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "rosario"))
	}
	return dirs
}

func defaultDatabasePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "rosario", "rosario.db")
	}
	return "rosario.db"
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
