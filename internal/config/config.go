package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/kolah/openapi2postman/internal/engine"
	"github.com/spf13/cobra"
)

const (
	// DefaultFile is read from the working directory when no --config is given.
	DefaultFile = "openapi2postman.yaml"

	// EnvPrefix marks environment variables read as configuration.
	// OPENAPI2POSTMAN_GENERATION__HOST_URL maps to generation.host-url.
	EnvPrefix = "OPENAPI2POSTMAN_"
)

type Config struct {
	Specs      []string         `koanf:"specs"`
	OutputDir  string           `koanf:"output-dir"`
	Templates  TemplateConfig   `koanf:"templates"`
	Generation GenerationConfig `koanf:"generation"`
	Log        LogConfig        `koanf:"log"`
	Server     ServerConfig     `koanf:"server"`
	Batch      BatchConfig      `koanf:"batch"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

type GenerationConfig struct {
	Environment         string `koanf:"environment"`
	HostURL             string `koanf:"host-url"`
	DefaultHostURL      string `koanf:"default-host-url"`
	AuthorizationType   string `koanf:"authorization-type"`
	GenerateBody        bool   `koanf:"generate-body"`
	GenerateBadRequests bool   `koanf:"generate-bad-requests"`
	SuccessBody         string `koanf:"success-body"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type BatchConfig struct {
	Concurrency int `koanf:"concurrency"`
}

// AuthorizationTypes lists the accepted generation.authorization-type values.
var AuthorizationTypes = []string{"", "none", "oauth"}

func defaults() map[string]any {
	return map[string]any{
		"output-dir":                       ".",
		"templates.dir":                    "",
		"generation.default-host-url":      "",
		"generation.generate-body":         false,
		"generation.generate-bad-requests": false,
		"log.level":                        "info",
		"log.pretty":                       false,
		"server.addr":                      ":8000",
		"batch.concurrency":                4,
	}
}

// BindFlags binds the flags shared by every command.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: "+DefaultFile+")")
	flags.String("templates", "", "Custom templates directory")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.Bool("log-pretty", false, "Human readable console logs")
}

// BindGenerationFlags binds the flags that shape generated collections.
func BindGenerationFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("env", "e", "", "Server description whose URL becomes the host")
	flags.StringP("url", "u", "", "Host URL, overrides --env")
	flags.String("default-url", "", "Host URL used when neither --env nor --url is given")
	flags.StringP("authorization-type", "a", "", "Authorization headers to add: oauth, none")
	flags.BoolP("generate-body", "b", false, "Generate request bodies")
	flags.BoolP("generate-bad-requests", "r", false, "Generate invalid bodies for 400/422 responses")
	flags.StringP("success-body", "s", "", "JSON file sent as the body of 200/201 requests")
}

// Load merges defaults, the config file, environment variables and flags, in
// increasing priority. specs given as arguments replace the configured list.
func Load(cmd *cobra.Command, specs []string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile := getString(cmd, "config")
	if configFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			configFile = DefaultFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(specs) > 0 {
		cfg.Specs = specs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps OPENAPI2POSTMAN_GENERATION__HOST_URL to generation.host-url.
func envKey(k, v string) (string, any) {
	key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	key = strings.ReplaceAll(key, "_", "-")
	if key == "specs" {
		return key, strings.Split(v, ",")
	}
	return key, v
}

func getString(cmd *cobra.Command, name string) string {
	if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
		return v
	}
	if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
		return v
	}
	return ""
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	getInt := func(name string) int {
		if v, err := cmd.Flags().GetInt(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetInt(name); err == nil {
			return v
		}
		return 0
	}

	stringFlags := map[string]string{
		"output-dir":         "output-dir",
		"templates":          "templates.dir",
		"env":                "generation.environment",
		"url":                "generation.host-url",
		"default-url":        "generation.default-host-url",
		"authorization-type": "generation.authorization-type",
		"success-body":       "generation.success-body",
		"log-level":          "log.level",
		"addr":               "server.addr",
	}
	for flag, key := range stringFlags {
		if v := getString(cmd, flag); v != "" {
			m[key] = v
		}
	}

	boolFlags := map[string]string{
		"generate-body":         "generation.generate-body",
		"generate-bad-requests": "generation.generate-bad-requests",
		"log-pretty":            "log.pretty",
	}
	for flag, key := range boolFlags {
		if flagChanged(flag) {
			m[key] = getBool(flag)
		}
	}

	if flagChanged("concurrency") {
		m["batch.concurrency"] = getInt("concurrency")
	}

	return m
}

func (c *Config) Validate() error {
	if !slices.Contains(AuthorizationTypes, c.Generation.AuthorizationType) {
		return fmt.Errorf("invalid authorization type: %s (valid: oauth, none)", c.Generation.AuthorizationType)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	if len(c.Specs) > 1 {
		single := map[string]string{
			"success-body": c.Generation.SuccessBody,
			"environment":  c.Generation.Environment,
			"host-url":     c.Generation.HostURL,
		}
		for _, name := range []string{"success-body", "environment", "host-url"} {
			if single[name] != "" {
				return fmt.Errorf("%s applies to a single spec, got %d specs", name, len(c.Specs))
			}
		}
	}

	return nil
}

// Options maps the generation settings onto engine options. The success body
// path is not read here.
func (g GenerationConfig) Options() engine.Options {
	return engine.Options{
		Environment:         g.Environment,
		HostURL:             g.HostURL,
		DefaultHostURL:      g.DefaultHostURL,
		AuthorizationType:   g.AuthorizationType,
		GenerateBody:        g.GenerateBody,
		GenerateBadRequests: g.GenerateBadRequests,
	}
}
