package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Drive   DriveConfig   `yaml:"drive"`
	Journal JournalConfig `yaml:"journal"`
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Publish PublishConfig `yaml:"publish"`
}

// DriveConfig locates the remote drive holding the journal.
type DriveConfig struct {
	URL string `yaml:"url"`
	// Root is the journal directory below URL.
	Root  string `yaml:"root"`
	Token string `yaml:"token"`
	// Auth is "bearer" or "query".
	Auth string `yaml:"auth"`
	// Format is the listing format, "tsv" or "json".
	Format  string        `yaml:"format"`
	Rate    float64       `yaml:"rate"`
	Burst   int           `yaml:"burst"`
	Timeout time.Duration `yaml:"timeout"`
}

type JournalConfig struct {
	// Layout is "sequential", "dated" or "archive".
	Layout      string `yaml:"layout"`
	EntriesDir  string `yaml:"entries_dir"`
	MaxAttempts int    `yaml:"max_attempts"`
	RecentLimit int    `yaml:"recent_limit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// AuthEnabled requires a drive token on every API request.
	AuthEnabled bool `yaml:"auth_enabled"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type PublishConfig struct {
	Title       string `yaml:"title"`
	InlineLimit int    `yaml:"inline_limit"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Drive: DriveConfig{
			Auth:    "bearer",
			Format:  "tsv",
			Timeout: 30 * time.Second,
		},
		Journal: JournalConfig{
			Layout:      "sequential",
			EntriesDir:  "entries/",
			MaxAttempts: 3,
			RecentLimit: 10,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "entreate.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Publish: PublishConfig{
			Title:       "Entreate",
			InlineLimit: 1024,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. An empty path falls back to ENTREATE_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("ENTREATE_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := map[string]*string{
		"ENTREATE_DRIVE_URL":      &cfg.Drive.URL,
		"ENTREATE_DRIVE_ROOT":     &cfg.Drive.Root,
		"ENTREATE_DRIVE_TOKEN":    &cfg.Drive.Token,
		"ENTREATE_DRIVE_AUTH":     &cfg.Drive.Auth,
		"ENTREATE_DRIVE_FORMAT":   &cfg.Drive.Format,
		"ENTREATE_JOURNAL_LAYOUT": &cfg.Journal.Layout,
		"ENTREATE_SERVER_HOST":    &cfg.Server.Host,
		"ENTREATE_DB_PATH":        &cfg.DB.Path,
		"ENTREATE_LOG_LEVEL":      &cfg.Log.Level,
		"ENTREATE_PUBLISH_TITLE":  &cfg.Publish.Title,
	}
	for key, dst := range setString {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt := map[string]*int{
		"ENTREATE_SERVER_PORT":          &cfg.Server.Port,
		"ENTREATE_JOURNAL_MAX_ATTEMPTS": &cfg.Journal.MaxAttempts,
	}
	for key, dst := range setInt {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("ENTREATE_SERVER_AUTH_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid ENTREATE_SERVER_AUTH_ENABLED: %w", err)
		}
		cfg.Server.AuthEnabled = b
	}
	if v := os.Getenv("ENTREATE_DRIVE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ENTREATE_DRIVE_RATE: %w", err)
		}
		cfg.Drive.Rate = f
	}
	return nil
}

// Validate rejects unknown enum values and impossible limits.
func (c Config) Validate() error {
	switch c.Drive.Auth {
	case "bearer", "query":
	default:
		return fmt.Errorf("drive.auth must be bearer or query, got %q", c.Drive.Auth)
	}
	switch c.Drive.Format {
	case "tsv", "json":
	default:
		return fmt.Errorf("drive.format must be tsv or json, got %q", c.Drive.Format)
	}
	switch c.Journal.Layout {
	case "sequential", "dated", "archive":
	default:
		return fmt.Errorf("journal.layout must be sequential, dated or archive, got %q", c.Journal.Layout)
	}
	if c.Journal.MaxAttempts < 1 {
		return fmt.Errorf("journal.max_attempts must be at least 1")
	}
	if c.Drive.Rate < 0 {
		return fmt.Errorf("drive.rate must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// JournalURL returns the drive URL of the journal directory.
func (c Config) JournalURL() string {
	base := strings.TrimSuffix(c.Drive.URL, "/") + "/"
	root := strings.Trim(c.Drive.Root, "/")
	if root == "" {
		return base
	}
	return base + root + "/"
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
