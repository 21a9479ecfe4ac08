// Package config loads client settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/version"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	EngineSoft   = "soft"
	EngineNative = "native"

	EnvLogLevel            = "PRIVACY_LOG_LEVEL"
	EnvLogFormat           = "PRIVACY_LOG_FORMAT"
	EnvEngine              = "PRIVACY_ENGINE"
	EnvPlaintextVersion    = "PRIVACY_PLAINTEXT_VERSION"
	EnvConfidentialVersion = "PRIVACY_CONFIDENTIAL_VERSION"
)

type Config struct {
	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Confidential engine: "soft" or "native"
	Engine string `yaml:"engine"`

	// Contract generations proofs are tagged for
	Plaintext    version.Family `yaml:"plaintext"`
	Confidential version.Family `yaml:"confidential"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "json",
		Engine:       EngineSoft,
		Plaintext:    version.Plaintext,
		Confidential: version.Confidential,
	}
}

// LoadConfig reads path over the defaults, then applies .env and environment
// overrides. An empty path skips the file; a missing .env is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		bz, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(bz, cfg); err != nil {
			return nil, errors.Wrapf(err, "decode config file %s", path)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with the PRIVACY_* environment variables that are set.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvLogFormat); ok {
		c.LogFormat = v
	}
	if v, ok := os.LookupEnv(EnvEngine); ok {
		c.Engine = v
	}
	if v, ok := os.LookupEnv(EnvPlaintextVersion); ok {
		f, err := version.ParseFamily(v)
		if err != nil {
			return errors.Wrap(err, EnvPlaintextVersion)
		}
		c.Plaintext = f
	}
	if v, ok := os.LookupEnv(EnvConfidentialVersion); ok {
		f, err := version.ParseFamily(v)
		if err != nil {
			return errors.Wrap(err, EnvConfidentialVersion)
		}
		c.Confidential = f
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return errors.Errorf("log_level %q is not a level", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return errors.Errorf("log_format must be json or console, got %q", c.LogFormat)
	}
	switch c.Engine {
	case EngineSoft, EngineNative:
	default:
		return errors.Errorf("engine must be %s or %s, got %q", EngineSoft, EngineNative, c.Engine)
	}
	if c.Plaintext.Category == 0 || c.Confidential.Category == 0 {
		return errors.New("version category must not be 0")
	}
	if c.Plaintext.Category == c.Confidential.Category {
		return errors.New("plaintext and confidential versions share a category")
	}
	return nil
}

// Apply installs the process logger described by the config, writing to w.
func (c *Config) Apply(w io.Writer) error {
	if c.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return utils.SetLogOutput(w, strings.ToLower(c.LogLevel))
}

func SaveConfig(cfg *Config, path string) error {
	bz, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, bz, 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}
