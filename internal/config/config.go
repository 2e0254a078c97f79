package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/semmidev/custodia/internal/domain"
)

type Config struct {
	App        AppConfig              `mapstructure:"app"`
	Repository RepositoryConfig       `mapstructure:"repository"`
	Sources    []SourceConfig         `mapstructure:"sources"`
	Retention  domain.RetentionPolicy `mapstructure:"retention"`
	RunLogs    RunLogsConfig          `mapstructure:"run_logs"`
	Reports    []ReportTarget         `mapstructure:"report_targets"`
	Auth       AuthConfig             `mapstructure:"auth"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

// RepositoryConfig is read-only for the whole run: the orchestrator
// never changes where it points mid-sequence.
type RepositoryConfig struct {
	Location        string        `mapstructure:"location"`
	PasswordFile    string        `mapstructure:"password_file"`
	CacheDir        string        `mapstructure:"cache_dir"`
	Binary          string        `mapstructure:"binary"`
	MetadataTimeout time.Duration `mapstructure:"metadata_timeout"`
}

type SourceConfig struct {
	Name        string        `mapstructure:"name"`
	Path        string        `mapstructure:"path"`
	Tag         string        `mapstructure:"tag"`
	Excludes    []string      `mapstructure:"excludes"`
	ExcludeFile string        `mapstructure:"exclude_file"`
	Schedule    string        `mapstructure:"schedule"`
	Enabled     bool          `mapstructure:"enabled"`
	Restore     RestoreConfig `mapstructure:"restore_check"`
}

// RestoreConfig describes the optional restore step run after a
// successful backup of a source.
type RestoreConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Snapshot string `mapstructure:"snapshot"`
	Target   string `mapstructure:"target"`
}

type RunLogsConfig struct {
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type ReportTarget struct {
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Google Drive
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Telegram
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type AuthConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Addr             string `mapstructure:"addr"`
	ClientSecretFile string `mapstructure:"client_secret_file"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app.name", "custodia")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("repository.binary", "restic")
	v.SetDefault("repository.metadata_timeout", time.Hour)
	v.SetDefault("run_logs.retention_days", 30)
	v.SetDefault("auth.addr", ":8722")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Repository.Location == "" {
		return fmt.Errorf("repository.location is required")
	}
	if c.Repository.PasswordFile == "" {
		return fmt.Errorf("repository.password_file is required")
	}
	if c.Repository.MetadataTimeout < 0 {
		return fmt.Errorf("repository.metadata_timeout must not be negative")
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for i, src := range c.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if src.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
		if src.Enabled && src.Schedule == "" {
			return fmt.Errorf("sources[%d]: schedule is required when enabled", i)
		}
		if src.Restore.Enabled && src.Restore.Target == "" {
			return fmt.Errorf("sources[%d]: restore_check.target is required when enabled", i)
		}
	}

	for bucket, n := range map[string]*int{
		"keep_last":    c.Retention.KeepLast,
		"keep_hourly":  c.Retention.KeepHourly,
		"keep_daily":   c.Retention.KeepDaily,
		"keep_weekly":  c.Retention.KeepWeekly,
		"keep_monthly": c.Retention.KeepMonthly,
		"keep_yearly":  c.Retention.KeepYearly,
	} {
		if n != nil && *n < 0 {
			return fmt.Errorf("retention.%s must not be negative", bucket)
		}
	}

	if c.RunLogs.RetentionDays < 0 {
		return fmt.Errorf("run_logs.retention_days must not be negative")
	}

	return nil
}

func (c *Config) GetEnabledSources() []SourceConfig {
	var enabled []SourceConfig
	for _, src := range c.Sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

func (c *Config) GetEnabledReportTargets() []ReportTarget {
	var enabled []ReportTarget
	for _, target := range c.Reports {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}
