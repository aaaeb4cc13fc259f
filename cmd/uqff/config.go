package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	envSaveDir = "UQFF_SAVE_DIR"
	envEngine  = "UQFF_ENGINE"
)

// Config represents the uqff configuration file (~/.config/uqff/config.yaml).
// Every value is a default: a flag set on the command line always wins.
type Config struct {
	SaveDir string `yaml:"save_dir"`
	Catalog string `yaml:"catalog"`
	HubUser string `yaml:"hub_user"`

	Engine  EngineConfig  `yaml:"engine"`
	Builder BuilderConfig `yaml:"builder"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

type EngineConfig struct {
	Command string   `yaml:"command"`
	URL     string   `yaml:"url"`
	Args    []string `yaml:"args"`
}

type BuilderConfig struct {
	Address string `yaml:"address"`
	Root    string `yaml:"root"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "uqff", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't
// exist or can't be parsed.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	return loadConfigFile(path)
}

func loadConfigFile(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyQuantizeConfig fills unset quantize options from the environment,
// then from the config file.
func applyQuantizeConfig(c *cli.Command, cfg Config, opts *quantizeOptions) {
	if !c.IsSet("save-dir") {
		opts.saveDir = firstNonEmpty(os.Getenv(envSaveDir), cfg.SaveDir)
	}
	if !c.IsSet("engine") {
		opts.engineCommand = firstNonEmpty(os.Getenv(envEngine), cfg.Engine.Command, opts.engineCommand)
	}
	if cfg.Engine.URL != "" && !c.IsSet("engine-url") && !c.IsSet("engine") {
		opts.engineURL = cfg.Engine.URL
	}
	if len(cfg.Engine.Args) > 0 && !c.IsSet("engine-arg") {
		opts.engineArgs = cfg.Engine.Args
	}
	if cfg.Catalog != "" && !c.IsSet("catalog") {
		opts.catalog = cfg.Catalog
	}
}

func applyModelCardConfig(c *cli.Command, cfg Config, hubUser *string) {
	if cfg.HubUser != "" && !c.IsSet("hub-user") {
		*hubUser = cfg.HubUser
	}
}

func applyBuilderConfig(c *cli.Command, cfg Config, addr, root, engineCommand *string, engineArgs *[]string) {
	if cfg.Builder.Address != "" && !c.IsSet("addr") {
		*addr = cfg.Builder.Address
	}
	if cfg.Builder.Root != "" && !c.IsSet("root") {
		*root = cfg.Builder.Root
	}
	if !c.IsSet("engine") {
		*engineCommand = firstNonEmpty(os.Getenv(envEngine), cfg.Engine.Command, *engineCommand)
	}
	if len(cfg.Engine.Args) > 0 && !c.IsSet("engine-arg") {
		*engineArgs = cfg.Engine.Args
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
