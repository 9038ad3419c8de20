// Package config loads server settings and rule presets from an optional YAML file, with
// environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/tarot-go2/internal/model"
	"github.com/mcoot/tarot-go2/internal/tarot"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Rule preset names selectable by a room's settings
const (
	PresetStandard      = "standard"
	PresetBakerBengtson = "baker-bengtson"
)

// Environment variables that override the file
const (
	EnvPort        = "PORT"
	EnvStorageType = "STORAGE_TYPE"
	EnvRedisURL    = "REDIS_URL"
	EnvNatsURL     = "NATS_URL"
	EnvLogLevel    = "LOG_LEVEL"
)

// Server holds the process settings
type Server struct {
	Port          string        `yaml:"port"`
	StorageType   string        `yaml:"storageType"`
	RedisURL      string        `yaml:"redisUrl"`
	NatsURL       string        `yaml:"natsUrl"` // Empty disables the NATS transport
	RoomQueueSize int           `yaml:"roomQueueSize"`
	RoomTTL       time.Duration `yaml:"roomTTL"`    // Redis expiry for idle rooms
	ArchiveTTL    time.Duration `yaml:"archiveTTL"` // Redis expiry for the hand archive
	LogLevel      string        `yaml:"logLevel"`
}

// Config is the full server configuration
type Config struct {
	Server Server
	// Rules holds the rule set for each preset, keyed by preset name
	Rules map[string]tarot.RuleSet
}

// file is the YAML layout. Rule presets are decoded on top of the built-in preset of the
// same name, so a file only lists the parameters it changes.
type file struct {
	Server Server               `yaml:"server"`
	Rules  map[string]yaml.Node `yaml:"rules"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Server: Server{
			Port:          "8080",
			StorageType:   StorageTypeMemory,
			RoomQueueSize: 64,
			RoomTTL:       24 * time.Hour,
			ArchiveTTL:    30 * 24 * time.Hour,
			LogLevel:      "info",
		},
		Rules: map[string]tarot.RuleSet{
			PresetStandard:      tarot.DefaultRules(),
			PresetBakerBengtson: tarot.BakerBengtsonRules(),
		},
	}
}

// Load reads a YAML configuration file
func Load(path string) (Config, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error reading config file [%s]", path))
	}

	cfg, err := Parse(bytes)
	if err != nil {
		return Config{}, errors.Wrap(err, fmt.Sprintf("Error parsing config file [%s]", path))
	}
	return cfg, nil
}

// Parse decodes YAML configuration over the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()

	f := file{Server: cfg.Server}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, errors.Wrap(err, "invalid YAML")
	}
	cfg.Server = f.Server

	for name, node := range f.Rules {
		rules, ok := cfg.Rules[name]
		if !ok {
			return Config{}, errors.Errorf("unknown rule preset %q", name)
		}
		if err := node.Decode(&rules); err != nil {
			return Config{}, errors.Wrapf(err, "rule preset %q", name)
		}
		rules.Name = name
		cfg.Rules[name] = rules
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv loads the file named by path, or the defaults when path is empty, then applies
// environment overrides
func FromEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides server settings with any environment variables that are set
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Port, EnvPort)
	set(&c.Server.StorageType, EnvStorageType)
	set(&c.Server.RedisURL, EnvRedisURL)
	set(&c.Server.NatsURL, EnvNatsURL)
	set(&c.Server.LogLevel, EnvLogLevel)
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	switch c.Server.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.Server.RedisURL == "" {
			return errors.New("redisUrl required when storageType is redis")
		}
	default:
		return errors.Errorf("invalid storageType %q: must be 'memory' or 'redis'", c.Server.StorageType)
	}
	if c.Server.RoomQueueSize <= 0 {
		return errors.New("roomQueueSize must be positive")
	}
	if _, err := parseLevel(c.Server.LogLevel); err != nil {
		return err
	}
	for _, name := range []string{PresetStandard, PresetBakerBengtson} {
		rules, ok := c.Rules[name]
		if !ok {
			return errors.Errorf("missing rule preset %q", name)
		}
		if err := rules.Validate(); err != nil {
			return errors.Wrapf(err, "rule preset %q", name)
		}
	}
	return nil
}

// RulesFor returns the configured preset selected by a room's settings
func (c *Config) RulesFor(settings model.GameSettings) tarot.RuleSet {
	name := PresetStandard
	if settings.BakerBengtsonVariant {
		name = PresetBakerBengtson
	}
	if rules, ok := c.Rules[name]; ok {
		return rules
	}
	return tarot.RulesFor(settings)
}

// LogLevel returns the configured slog level
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Server.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, errors.Errorf("invalid logLevel %q", s)
	}
	return level, nil
}
