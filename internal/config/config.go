package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	GLSDir      string `mapstructure:"gls_dir" yaml:"gls_dir"`
	OutputName  string `mapstructure:"output_name" yaml:"output_name"`
	TimingsFile string `mapstructure:"timings_file" yaml:"timings_file"`
	LabelsFile  string `mapstructure:"labels_file" yaml:"labels_file"`
	AHAScheme   string `mapstructure:"aha_scheme" yaml:"aha_scheme"`
	XMLDataTag  string `mapstructure:"xml_data_tag" yaml:"xml_data_tag"`
	WriteExcel  bool   `mapstructure:"write_excel" yaml:"write_excel"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"output_dir", "gls_dir", "output_name", "timings_file", "labels_file",
	"aha_scheme", "xml_data_tag", "write_excel", "log_level", "log_format",
}

// configDir returns ~/.echoloom.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".echoloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.echoloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ECHOLOOM")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("output_dir", ".")
	v.SetDefault("gls_dir", "")
	v.SetDefault("output_name", "all_cases")
	v.SetDefault("timings_file", "")
	v.SetDefault("labels_file", "")
	v.SetDefault("aha_scheme", "4:1:1")
	v.SetDefault("xml_data_tag", "Data")
	v.SetDefault("write_excel", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil && cfgFile != "" && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
