// Package config loads dashtab settings from `.dashtab.yaml` and DASHTAB_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	DraftsDisk  = "disk"
	DraftsRedis = "redis"
)

// Config holds the resolved settings.
type Config struct {
	Path      string        `json:"path"`
	Drafts    string        `json:"drafts"`
	RedisAddr string        `json:"redis_addr,omitempty"`
	RedisTTL  time.Duration `json:"redis_ttl"`
	GridWidth int           `json:"grid_width"`
	LogLevel  log.Level     `json:"log_level"`
}

// BasePath implements store.Config.
func (c *Config) BasePath() string {
	return c.Path
}

// Load reads the config file (if any) from $DASHTAB_CONFIG_PATH or the
// working directory, then applies environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.dashtab.db")
	v.SetDefault("drafts", DraftsDisk)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_ttl", "24h")
	v.SetDefault("grid_width", 24)
	v.SetDefault("log_level", "warn")
	v.SetConfigName(".dashtab") // .yaml is implicit
	v.SetEnvPrefix("DASHTAB")
	v.AutomaticEnv()

	if override := os.Getenv("DASHTAB_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: path: %w", err)
	}
	drafts := strings.ToLower(strings.TrimSpace(v.GetString("drafts")))
	switch drafts {
	case DraftsDisk, DraftsRedis:
	default:
		return nil, fmt.Errorf("config: drafts must be %q or %q, got %q", DraftsDisk, DraftsRedis, drafts)
	}
	level, err := log.ParseLevel(v.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("config: log_level: %w", err)
	}
	width := v.GetInt("grid_width")
	if width <= 0 {
		return nil, fmt.Errorf("config: grid_width must be positive, got %d", width)
	}
	return &Config{
		Path:      path,
		Drafts:    drafts,
		RedisAddr: v.GetString("redis_addr"),
		RedisTTL:  v.GetDuration("redis_ttl"),
		GridWidth: width,
		LogLevel:  level,
	}, nil
}
