package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFilename = ".jsync.yaml"
	EnvPrefix      = "JSYNC"

	DefaultSource   = "obsidian/journal"
	DefaultDest     = "src/content/journal"
	DefaultInterval = 30 * time.Minute
	DefaultDebounce = 30 * time.Minute

	BackendGoGit = "gogit"
	BackendGit   = "git"
)

type VCSConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	Remote      string `mapstructure:"remote" yaml:"remote"`
	Branch      string `mapstructure:"branch" yaml:"branch,omitempty"`
	Push        bool   `mapstructure:"push" yaml:"push"`
	AuthorName  string `mapstructure:"author_name" yaml:"author_name,omitempty"`
	AuthorEmail string `mapstructure:"author_email" yaml:"author_email,omitempty"`
	Token       string `mapstructure:"token" yaml:"token,omitempty"`
}

func (c VCSConfig) GitOptions() GitOptions {
	return GitOptions{
		Remote:      c.Remote,
		Branch:      c.Branch,
		AuthorName:  c.AuthorName,
		AuthorEmail: c.AuthorEmail,
		Token:       c.Token,
	}
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb,omitempty"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups,omitempty"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days,omitempty"`
}

type Config struct {
	Source        string        `mapstructure:"source"`
	Dest          string        `mapstructure:"dest"`
	Interval      time.Duration `mapstructure:"interval"`
	Debounce      time.Duration `mapstructure:"debounce"`
	PersistSource bool          `mapstructure:"persist_source"`
	VCS           VCSConfig     `mapstructure:"vcs"`
	Log           LogConfig     `mapstructure:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Source:        DefaultSource,
		Dest:          DefaultDest,
		Interval:      DefaultInterval,
		Debounce:      DefaultDebounce,
		PersistSource: true,
		VCS: VCSConfig{
			Backend: BackendGoGit,
			Remote:  DefaultRemote,
			Push:    true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func (c *Config) Validate() error {
	if c.Source == "" || c.Dest == "" {
		return errors.New("source and dest are required")
	}
	if filepath.Clean(c.Source) == filepath.Clean(c.Dest) {
		return errors.New("source and dest must differ")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce must be positive, got %s", c.Debounce)
	}
	switch c.VCS.Backend {
	case BackendGoGit, BackendGit:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.VCS.Backend)
	}
	return nil
}

// LoadConfig layers defaults, the config file, <root>/.env and JSYNC_*
// environment variables. explicit overrides the default <root>/.jsync.yaml
// and must exist when set.
func LoadConfig(root, explicit string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(root, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigFile(filepath.Join(root, ConfigFilename))
	}
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if !missing || explicit != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("source", cfg.Source)
	v.SetDefault("dest", cfg.Dest)
	v.SetDefault("interval", cfg.Interval)
	v.SetDefault("debounce", cfg.Debounce)
	v.SetDefault("persist_source", cfg.PersistSource)
	v.SetDefault("vcs.backend", cfg.VCS.Backend)
	v.SetDefault("vcs.remote", cfg.VCS.Remote)
	v.SetDefault("vcs.branch", cfg.VCS.Branch)
	v.SetDefault("vcs.push", cfg.VCS.Push)
	v.SetDefault("vcs.author_name", cfg.VCS.AuthorName)
	v.SetDefault("vcs.author_email", cfg.VCS.AuthorEmail)
	v.SetDefault("vcs.token", cfg.VCS.Token)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
}

// configFile is the on-disk shape; durations are written as "30m0s".
type configFile struct {
	Source        string    `yaml:"source"`
	Dest          string    `yaml:"dest"`
	Interval      string    `yaml:"interval"`
	Debounce      string    `yaml:"debounce"`
	PersistSource bool      `yaml:"persist_source"`
	VCS           VCSConfig `yaml:"vcs"`
	Log           LogConfig `yaml:"log"`
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(configFile{
		Source:        cfg.Source,
		Dest:          cfg.Dest,
		Interval:      cfg.Interval.String(),
		Debounce:      cfg.Debounce.String(),
		PersistSource: cfg.PersistSource,
		VCS:           cfg.VCS,
		Log:           cfg.Log,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
