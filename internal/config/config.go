// internal/config/config.go
//
// Runtime configuration for the server and the terminal client.
//
// Sources, later ones winning:
//  1. Defaults below.
//  2. Optional YAML file named by CONFIG_FILE.
//  3. Environment variables (a `.env` file is loaded first via godotenv).
//
// Environment variables:
//
//	PORT, LOG_LEVEL, DB_PATH, CLIENT_ORIGIN, APP_SECRET,
//	WORD_SOURCE (local|remote|fallback), WORD_API_URL, WORD_API_TIMEOUT,
//	WORDS_ANSWERS_FILE, WORDS_ALLOWED_FILE, MAX_TRIES, STRICT_GUESSES,
//	SESSION_IDLE, NODE_ENV

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/infosphere/wordgame/internal/game"
)

const devSecret = "dev_secret_change_me"

// Config is the resolved configuration.
type Config struct {
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	DBPath         string        `yaml:"db_path"`
	ClientOrigin   string        `yaml:"client_origin"`
	Secret         string        `yaml:"app_secret"`
	WordSource     string        `yaml:"word_source"`
	WordAPIURL     string        `yaml:"word_api_url"`
	WordAPITimeout time.Duration `yaml:"word_api_timeout"`
	AnswersFile    string        `yaml:"answers_file"`
	AllowedFile    string        `yaml:"allowed_file"`
	MaxTries       int           `yaml:"max_tries"`
	StrictGuesses  bool          `yaml:"strict_guesses"`
	SessionIdle    time.Duration `yaml:"session_idle"`
	Production     bool          `yaml:"production"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           "5175",
		LogLevel:       "info",
		DBPath:         "./data/wordgame.db",
		ClientOrigin:   "http://localhost:5173",
		Secret:         devSecret,
		WordSource:     "local",
		WordAPIURL:     "https://trouve-mot.fr/",
		WordAPITimeout: 5 * time.Second,
		MaxTries:       game.DefaultMaxTries,
		SessionIdle:    2 * time.Hour,
	}
}

// Load builds the configuration from defaults, CONFIG_FILE and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from getenv; empty variables are ignored.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(k string, dst *string) {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	str("DB_PATH", &c.DBPath)
	str("CLIENT_ORIGIN", &c.ClientOrigin)
	str("APP_SECRET", &c.Secret)
	str("WORD_SOURCE", &c.WordSource)
	str("WORD_API_URL", &c.WordAPIURL)
	str("WORDS_ANSWERS_FILE", &c.AnswersFile)
	str("WORDS_ALLOWED_FILE", &c.AllowedFile)

	if v := getenv("MAX_TRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_TRIES: %w", err)
		}
		c.MaxTries = n
	}
	if v := getenv("STRICT_GUESSES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: STRICT_GUESSES: %w", err)
		}
		c.StrictGuesses = b
	}
	for k, dst := range map[string]*time.Duration{
		"WORD_API_TIMEOUT": &c.WordAPITimeout,
		"SESSION_IDLE":     &c.SessionIdle,
	} {
		if v := getenv(k); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", k, err)
			}
			*dst = d
		}
	}
	if getenv("NODE_ENV") == "production" {
		c.Production = true
	}
	return nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c Config) Validate() error {
	var errs []error
	if c.MaxTries <= 0 {
		errs = append(errs, fmt.Errorf("max tries must be positive, got %d", c.MaxTries))
	}
	switch strings.ToLower(c.WordSource) {
	case "local", "remote", "fallback":
	default:
		errs = append(errs, fmt.Errorf("unknown word source %q", c.WordSource))
	}
	if c.Production && c.Secret == devSecret {
		errs = append(errs, errors.New("APP_SECRET must be set in production"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
