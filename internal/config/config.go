// Package config loads voicewriter settings from a YAML file, an optional
// .env file and the process environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath    = "voicewriter.yaml"
	DefaultBaseURL = "http://localhost:8080/api/v1"
	DefaultTimeout = 10 * time.Second

	EnvAPIURL   = "VOICEWRITER_API_URL"
	EnvUserID   = "VOICEWRITER_USER_ID"
	EnvLogLevel = "VOICEWRITER_LOG_LEVEL"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

type Config struct {
	API      APIConfig      `yaml:"api"`
	User     UserConfig     `yaml:"user"`
	Audio    AudioConfig    `yaml:"audio"`
	Journal  JournalConfig  `yaml:"journal"`
	Log      LogConfig      `yaml:"log"`
	Progress ProgressConfig `yaml:"progress"`
}

type APIConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api/v1".
	BaseURL string `yaml:"base_url"`

	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout"`
}

type UserConfig struct {
	// ID identifies the learner to the progress endpoints. When empty an
	// anonymous id is generated once and kept in the journal.
	ID string `yaml:"id"`
}

type AudioConfig struct {
	// Command is the external player. The local file path is appended to Args.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Path  string   `yaml:"path"`
	Level LogLevel `yaml:"level"`
}

type ProgressConfig struct {
	// Sync upserts a progress record after every submission.
	Sync bool `yaml:"sync"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Audio: AudioConfig{
			Command: "ffplay",
			Args:    []string{"-nodisp", "-autoexit", "-loglevel", "quiet"},
		},
		Journal:  JournalConfig{Path: "voicewriter.db"},
		Log:      LogConfig{Path: "voicewriter.log", Level: LogInfo},
		Progress: ProgressConfig{Sync: true},
	}
}

// Load reads the YAML file at path, then applies .env and environment
// overrides. A missing file at DefaultPath is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath
	}
	var cfg *Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		cfg, err = decode(f)
		if err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
		cfg = Default()
	default:
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}

	applyEnv(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r on top of Default and
// validates the result. Environment overrides are not applied.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUserID)); v != "" {
		cfg.User.ID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = LogLevel(strings.ToLower(v))
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.API.BaseURL == "" {
		errs = append(errs, errors.New("api.base_url is required"))
	} else if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url %q must be an absolute http(s) URL", cfg.API.BaseURL))
	}
	if cfg.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout %s must be positive", cfg.API.Timeout))
	}
	if cfg.Audio.Command == "" {
		errs = append(errs, errors.New("audio.command is required"))
	}
	if cfg.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required"))
	}
	if cfg.Log.Level != "" && !cfg.Log.Level.IsValid() {
		errs = append(errs, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", cfg.Log.Level))
	}

	return errors.Join(errs...)
}
