package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ARENA_"

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Load returns the default configuration overlaid with the TOML file at path
// (skipped when path is empty) and then with ARENA_* variables from the
// process environment and envFile. Process variables win over the file.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := Decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Printf("[config] loaded %s", path)
	}

	env, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode overlays TOML data onto cfg. Unknown keys are rejected so typos in
// a config file do not go unnoticed.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

func readEnvFile(envFile string) (map[string]string, error) {
	if envFile == "" {
		return nil, nil
	}
	env, err := godotenv.Read(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	log.Printf("[config] loaded environment from %s", envFile)
	return env, nil
}

type envBinding struct {
	key   string
	apply func(cfg *Config, v string) error
}

var envBindings = []envBinding{
	{"SERVER_NAME", func(c *Config, v string) error { c.Server.Name = v; return nil }},
	{"PORT", func(c *Config, v string) error { return parseUint(v, &c.Server.Port) }},
	{"TICK_RATE", func(c *Config, v string) error { return parseInt(v, &c.Server.TickRate) }},
	{"VERSION", func(c *Config, v string) error { c.Server.Version = v; return nil }},
	{"LEVEL", func(c *Config, v string) error { c.Server.Level = v; return nil }},
	{"MASTER_URL", func(c *Config, v string) error { c.Server.MasterURL = v; return nil }},
	{"HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"HOST_BOUND", func(c *Config, v string) error { return parseBool(v, &c.Server.HostBound) }},
	{"RECONNECT_GRACE_SECONDS", func(c *Config, v string) error { return parseInt(v, &c.Server.ReconnectGraceSeconds) }},
	{"CAPACITY", func(c *Config, v string) error { return parseInt(v, &c.Match.Capacity) }},
	{"COUNTDOWN_SECONDS", func(c *Config, v string) error { return parseInt(v, &c.Match.CountdownSeconds) }},
	{"MATCH_SECONDS", func(c *Config, v string) error { return parseInt(v, &c.Match.MatchSeconds) }},
	{"BOT_DIFFICULTY", func(c *Config, v string) error { c.Bot.Difficulty = strings.ToLower(v); return nil }},
}

// ApplyEnv applies ARENA_* overrides found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok {
			continue
		}
		if err := b.apply(cfg, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseUint(v string, dst *uint) error {
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return err
	}
	*dst = uint(n)
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
