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
	// OxideTable is an optional CSV/YAML file merged over the builtin
	// oxide reference table.
	OxideTable string `mapstructure:"oxide_table" yaml:"oxide_table"`
	// DefaultWiggle is the anomaly-filter tolerance fraction used when
	// --wiggle is not given.
	DefaultWiggle float64 `mapstructure:"default_wiggle" yaml:"default_wiggle"`
	// DefaultDelimiter forces a CSV delimiter: "," | ";" | "tab". Empty
	// means sniff from the file extension.
	DefaultDelimiter string `mapstructure:"default_delimiter" yaml:"default_delimiter"`
	// DefaultSheetIndex is the 1-based XLSX sheet read when no sheet is named.
	DefaultSheetIndex int `mapstructure:"default_sheet_index" yaml:"default_sheet_index"`
	// NAValues are cell contents treated as missing measurements.
	NAValues []string `mapstructure:"na_values" yaml:"na_values"`
	// LabelColumn names the sample-id column carried into results.
	LabelColumn string `mapstructure:"label_column" yaml:"label_column"`
	// WriteManifest controls whether batch runs emit a JSON run manifest.
	WriteManifest bool `mapstructure:"write_manifest" yaml:"write_manifest"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is
// empty, it writes to ~/.probecalc/config.yaml, creating the directory if
// necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".probecalc")
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
	v.SetEnvPrefix("PROBECALC")
	v.AutomaticEnv()

	v.SetDefault("oxide_table", "")
	v.SetDefault("default_wiggle", 0.005)
	v.SetDefault("default_delimiter", "")
	v.SetDefault("default_sheet_index", 1)
	v.SetDefault("na_values", []string{"<", "-"})
	v.SetDefault("label_column", "")
	v.SetDefault("write_manifest", true)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".probecalc")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
