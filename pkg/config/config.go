// Package config loads meshconf settings from defaults, an optional config
// file, .env, MESHCONF_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourceDir    = "dir"
	SourceConsul = "consul"

	SinkDir    = "dir"
	SinkConsul = "consul"
	SinkMySQL  = "mysql"
	SinkStdout = "stdout"
)

// Config holds every setting of a run.
type Config struct {
	NodesDir       string `mapstructure:"nodes_dir"`
	Ext            string `mapstructure:"ext"`
	OutputDir      string `mapstructure:"output_dir"`
	SplitSeparator string `mapstructure:"split_separator"`
	Source         string `mapstructure:"source"`
	Sink           string `mapstructure:"sink"`
	ConsulAddr     string `mapstructure:"consul_addr"`
	ConsulPrefix   string `mapstructure:"consul_prefix"`
	MySQLDSN       string `mapstructure:"mysql_dsn"`
	Journal        string `mapstructure:"journal"`
	Workers        int    `mapstructure:"workers"`
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("nodes_dir", "nodes")
	v.SetDefault("ext", ".wg")
	v.SetDefault("output_dir", "conf_output")
	v.SetDefault("split_separator", ":")
	v.SetDefault("source", SourceDir)
	v.SetDefault("sink", SinkDir)
	v.SetDefault("consul_addr", "127.0.0.1:8500")
	v.SetDefault("consul_prefix", "meshconf")
	v.SetDefault("mysql_dsn", "")
	v.SetDefault("journal", "")
	v.SetDefault("workers", 4)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// New returns a viper instance wired for meshconf: defaults, meshconf.yaml
// in the working directory or /etc/meshconf, and MESHCONF_* variables.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("meshconf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/meshconf")
	v.SetEnvPrefix("MESHCONF")
	v.AutomaticEnv()
	return v
}

// Load reads .env and the optional config file into v and decodes the result.
// Flags bound to v before Load take precedence.
func Load(v *viper.Viper) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings no run could work with.
func (c *Config) Validate() error {
	if !slices.Contains([]string{SourceDir, SourceConsul}, c.Source) {
		return fmt.Errorf("unsupported source %q", c.Source)
	}
	if !slices.Contains([]string{SinkDir, SinkConsul, SinkMySQL, SinkStdout}, c.Sink) {
		return fmt.Errorf("unsupported sink %q", c.Sink)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Sink == SinkMySQL && c.MySQLDSN == "" {
		return fmt.Errorf("mysql sink requires mysql_dsn")
	}
	if c.Source == SourceDir && c.NodesDir == "" {
		return fmt.Errorf("nodes_dir is required")
	}
	if c.Sink == SinkDir && c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
