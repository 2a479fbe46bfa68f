package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"yew-art/server/internal/observability"
	"yew-art/server/internal/sim"
	"yew-art/server/internal/telemetry"
	"yew-art/server/logging"
)

const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 5 * time.Second
)

// LoggingConfig selects the event sinks.
type LoggingConfig struct {
	MinimumSeverity string `yaml:"minimum_severity" json:"minimumSeverity" validate:"oneof=debug info warn error"`
	Color           bool   `yaml:"color" json:"color"`
	// JSONPath enables the newline-delimited JSON sink when set.
	JSONPath string `yaml:"json_path" json:"jsonPath,omitempty"`
}

// Config is the server configuration as read from file, environment and flags.
type Config struct {
	Addr            string               `yaml:"addr" json:"addr" validate:"required"`
	ClientDir       string               `yaml:"client_dir" json:"clientDir,omitempty"`
	TickInterval    time.Duration        `yaml:"tick_interval" json:"tickInterval" validate:"gt=0"`
	AutoStart       bool                 `yaml:"auto_start" json:"autoStart"`
	ShutdownTimeout time.Duration        `yaml:"shutdown_timeout" json:"shutdownTimeout" validate:"gte=0"`
	CommandRate     float64              `yaml:"command_rate" json:"commandRate" validate:"gte=0"`
	CommandBurst    int                  `yaml:"command_burst" json:"commandBurst" validate:"gte=0"`
	Simulation      sim.Config           `yaml:"simulation" json:"simulation"`
	Observability   observability.Config `yaml:"observability" json:"observability"`
	Logging         LoggingConfig        `yaml:"logging" json:"logging"`

	Logger telemetry.Logger `yaml:"-" json:"-"`
}

// DefaultConfig returns the reference server settings.
func DefaultConfig() Config {
	return Config{
		Addr:            DefaultAddr,
		TickInterval:    sim.DefaultInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		Simulation:      sim.DefaultConfig(),
		Logging: LoggingConfig{
			MinimumSeverity: logging.SeverityInfo.String(),
			Color:           true,
		},
	}
}

var configValidate = validator.New()

// Validate checks struct constraints and then the simulation's own rules.
func (c Config) Validate() error {
	var errs []error
	if err := configValidate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig layers an optional YAML file and the environment over the
// defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := loadConfigFromEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadConfigFromEnv(cfg *Config) error {
	var errs []error
	if v := os.Getenv("YEWART_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("YEWART_SEED"); v != "" {
		cfg.Simulation.Seed = v
	}
	if v := os.Getenv("YEWART_CLIENT_DIR"); v != "" {
		cfg.ClientDir = v
	}
	if v := os.Getenv("YEWART_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TickInterval = d
		} else {
			errs = append(errs, fmt.Errorf("invalid YEWART_TICK_INTERVAL=%q: %w", v, err))
		}
	}
	if v := os.Getenv("YEWART_HISTORY_CAPACITY"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.HistoryCapacity = i
		} else {
			errs = append(errs, fmt.Errorf("invalid YEWART_HISTORY_CAPACITY=%q: %w", v, err))
		}
	}
	if v := os.Getenv("ENABLE_PPROF"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.EnablePprof = b
		} else {
			errs = append(errs, fmt.Errorf("invalid ENABLE_PPROF=%q: %w", v, err))
		}
	}
	if v := os.Getenv("ENABLE_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Observability.EnableMetrics = b
		} else {
			errs = append(errs, fmt.Errorf("invalid ENABLE_METRICS=%q: %w", v, err))
		}
	}
	return errors.Join(errs...)
}

// ConfigSchema describes the YAML config file.
func ConfigSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		KeyNamer:       yamlKeyNamer,
	}
	schema := reflector.ReflectFromType(reflect.TypeOf(Config{}))
	if schema == nil {
		return nil, errors.New("failed to reflect config schema")
	}
	schema.Title = "yew-art server configuration"
	schema.Description = "Settings for the drifting-circles simulation server."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}

// yamlKeyNamer maps the camelCase JSON field names onto the snake_case keys
// the YAML file uses.
func yamlKeyNamer(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
