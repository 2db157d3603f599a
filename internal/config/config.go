package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NORMCONTROL_PORT.
const EnvPrefix = "NORMCONTROL"

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "settings.json"

type Config struct {
	Port string `mapstructure:"port"`

	// Auth
	APIKey string `mapstructure:"api_key"`

	// Rules
	RulesDir     string `mapstructure:"rules_dir"`
	ReferenceSty string `mapstructure:"reference_sty"`
	WatchRules   bool   `mapstructure:"watch_rules"`
	Dedup        bool   `mapstructure:"dedup"`

	// Logging: debug|info|warn|error or the legacy levels 1..3.
	LogLevel  string `mapstructure:"logging_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`
}

var defaults = map[string]any{
	"port":             "8000",
	"api_key":          "",
	"rules_dir":        "rules",
	"reference_sty":    "rules/reference.sty",
	"watch_rules":      true,
	"dedup":            true,
	"logging_level":    "info",
	"log_format":       "json",
	"log_file":         "",
	"worker_count":     4,
	"max_queue_size":   100,
	"max_upload_bytes": int64(52428800), // 50MB
	"job_ttl":          time.Hour,
}

// Load reads defaults, then the config file at path (or DefaultFile when
// path is empty and the file exists), then NORMCONTROL_* variables.
func Load(path string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case path != "":
		v.SetConfigFile(path)
	case fileExists(DefaultFile):
		v.SetConfigFile(DefaultFile)
	}
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	return cfg, nil
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	"1": true, "2": true, "3": true,
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	info, err := os.Stat(c.RulesDir)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("rules_dir: %w", err))
	case !info.IsDir():
		errs = append(errs, fmt.Errorf("rules_dir %s is not a directory", c.RulesDir))
	}
	if !validLevels[strings.ToLower(strings.TrimSpace(c.LogLevel))] {
		errs = append(errs, fmt.Errorf("logging_level %q is not one of debug, info, warn, error, 1, 2, 3", c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("log_format %q must be json or text", c.LogFormat))
	}
	return errors.Join(errs...)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
