package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Detection and graph thresholds
	SignificanceThreshold float64 `mapstructure:"significance_threshold" yaml:"significance_threshold"`
	MinColumnScore        float64 `mapstructure:"min_column_score" yaml:"min_column_score"`
	SampleSize            int     `mapstructure:"sample_size" yaml:"sample_size"`
	MirrorEdges           bool    `mapstructure:"mirror_edges" yaml:"mirror_edges"`
	// Seed for column sampling; 0 draws a fresh seed per run.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`

	// Number parsing for text measurement cells
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// HTTP server
	ListenAddr     string   `mapstructure:"listen_addr" yaml:"listen_addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	PreviewRows    int      `mapstructure:"preview_rows" yaml:"preview_rows"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"data_dir",
	"significance_threshold",
	"min_column_score",
	"sample_size",
	"mirror_edges",
	"seed",
	"decimal_separator",
	"thousands_separator",
	"listen_addr",
	"allowed_origins",
	"max_upload_mb",
	"preview_rows",
	"log_level",
	"log_format",
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate rejects values the pipeline cannot run with.
func (c *Global) Validate() error {
	var errs []error
	if !(c.SignificanceThreshold > 0 && c.SignificanceThreshold <= 1) {
		errs = append(errs, fmt.Errorf("significance_threshold must be in (0, 1], got %g", c.SignificanceThreshold))
	}
	if c.MinColumnScore <= 0 || c.MinColumnScore > 3 {
		errs = append(errs, fmt.Errorf("min_column_score must be in (0, 3], got %g", c.MinColumnScore))
	}
	if c.SampleSize < 1 {
		errs = append(errs, fmt.Errorf("sample_size must be positive, got %d", c.SampleSize))
	}
	if c.MaxUploadMB < 1 {
		errs = append(errs, fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB))
	}
	if c.PreviewRows < 0 {
		errs = append(errs, fmt.Errorf("preview_rows must not be negative, got %d", c.PreviewRows))
	}
	for _, s := range []struct{ key, val string }{
		{"decimal_separator", c.DecimalSeparator},
		{"thousands_separator", c.ThousandsSeparator},
	} {
		if utf8.RuneCountInString(s.val) > 1 {
			errs = append(errs, fmt.Errorf("%s must be a single character, got %q", s.key, s.val))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// DecimalRune returns the configured decimal separator, or 0 for auto-detection.
func (c *Global) DecimalRune() rune { return firstRune(c.DecimalSeparator) }

// ThousandsRune returns the configured thousands separator, or 0 for auto-detection.
func (c *Global) ThousandsRune() rune { return firstRune(c.ThousandsSeparator) }

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// TablesDir is where imported tables are cached.
func (c *Global) TablesDir() string { return filepath.Join(c.DataDir, "tables") }

// EdgeListsDir is where edge lists are written.
func (c *Global) EdgeListsDir() string { return filepath.Join(c.DataDir, "edgelists") }

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".coexnet"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.coexnet/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeDir()
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
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("COEXNET")
	v.AutomaticEnv()

	v.SetDefault("data_dir", "")
	v.SetDefault("significance_threshold", 5e-8)
	v.SetDefault("min_column_score", 0.3)
	v.SetDefault("sample_size", 20)
	v.SetDefault("mirror_edges", false)
	v.SetDefault("seed", 0)
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("listen_addr", "127.0.0.1:5000")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("max_upload_mb", 64)
	v.SetDefault("preview_rows", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve data_dir default: ~/.coexnet/data
	if c.DataDir == "" {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	return &c, nil
}
