// Package config loads wcprobe settings.
//
// Settings are layered: built-in defaults, then the YAML config file, then
// environment variables (including a .env file), then command-line flags
// applied by the caller. The merged result is validated against an embedded
// CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/sandbox"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables read by Load.
const (
	EnvTopicID   = "WCPROBE_TOPIC_ID"
	EnvLogLevel  = "WCPROBE_LOG_LEVEL"
	EnvDatabase  = "WCPROBE_DATABASE"
	EnvReportDir = "WCPROBE_REPORT_DIR"
	EnvProjectID = "WALLETCONNECT_PROJECT_ID"
)

// Config holds every wcprobe setting.
type Config struct {
	TopicID   string          `yaml:"topic_id" json:"topic_id,omitempty"`
	Groups    []string        `yaml:"groups" json:"groups,omitempty"`
	LogLevel  string          `yaml:"log_level" json:"log_level"`
	Database  string          `yaml:"database" json:"database,omitempty"`
	ReportDir string          `yaml:"report_dir" json:"report_dir,omitempty"`
	ProjectID string          `yaml:"project_id" json:"project_id,omitempty"`
	Sandbox   sandbox.Profile `yaml:"sandbox" json:"sandbox"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Sandbox:  sandbox.DefaultProfile(),
	}
}

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// Environment returns a lookup over the process environment layered on top
// of the .env file at dotenvPath. Process variables win over .env values. A
// missing .env file is not an error.
func Environment(dotenvPath string) (LookupFunc, error) {
	dotenv := map[string]string{}
	if dotenvPath != "" {
		values, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

// MapLookup adapts a map to a LookupFunc.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and env. The result is validated.
func Load(path string, env LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if env != nil {
		cfg.ApplyEnv(env)
	}
	cfg.normalizeLogLevel()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from env. Empty values are ignored.
func (c *Config) ApplyEnv(env LookupFunc) {
	set := func(key string, dst *string) {
		if v, ok := env(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvTopicID, &c.TopicID)
	set(EnvLogLevel, &c.LogLevel)
	set(EnvDatabase, &c.Database)
	set(EnvReportDir, &c.ReportDir)
	set(EnvProjectID, &c.ProjectID)
}

// normalizeLogLevel rewrites any name logging.ParseLevel accepts ("WARNING",
// " Info ", "") to its canonical form. Unknown names are left for the schema
// to reject.
func (c *Config) normalizeLogLevel() {
	if level, err := logging.ParseLevel(c.LogLevel); err == nil {
		c.LogLevel = level.String()
	}
}

// Validate checks c against the embedded CUE schema and the sandbox
// profile rules. Log level aliases are accepted.
func (c Config) Validate() error {
	c.normalizeLogLevel()
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Sandbox.Validate(); err != nil {
		return fmt.Errorf("invalid config: sandbox: %w", err)
	}
	return nil
}
