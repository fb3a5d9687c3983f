package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvDatabase = "HANGS_DB"
	EnvLogLevel = "HANGS_LOG_LEVEL"
	EnvAddr     = "HANGS_ADDR"
)

// Config holds the application configuration
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	UI       UIConfig       `toml:"ui"`
	Server   ServerConfig   `toml:"server"`
	Watch    WatchConfig    `toml:"watch"`
	Tasks    TasksConfig    `toml:"tasks"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LogConfig controls where logs go. The TUI always logs to File since the
// terminal belongs to the interface.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// UIConfig tunes the terminal interface
type UIConfig struct {
	MaxSuggestions int    `toml:"max_suggestions"`
	ActivationChar string `toml:"activation_char"`
}

// ServerConfig holds settings for `hangs serve`
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// WatchConfig controls reloading when another process writes the database
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

// TasksConfig picks the task manager used by `hangs remind`
type TasksConfig struct {
	Backend string `toml:"backend"`
}

// Duration is a time.Duration written as "250ms" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Dir returns the directory holding config, database and log
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hangs-tui"), nil
}

// Default returns the default configuration
func Default() *Config {
	dir, _ := Dir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "hangs.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "pretty",
			File:   filepath.Join(dir, "hangs.log"),
		},
		UI: UIConfig{
			MaxSuggestions: 10,
			ActivationChar: "#",
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:7070",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: Duration{250 * time.Millisecond},
		},
		Tasks: TasksConfig{
			Backend: "taskwarrior",
		},
	}
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(dir, "config.toml"))
}

// LoadFrom loads configuration from a specific path. A .env file next to it
// and the process environment override file values, in that order.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// No config file, keep defaults
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	env, err := readEnv(filepath.Join(filepath.Dir(configPath), ".env"))
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
	return cfg, nil
}

// readEnv merges the optional .env file with the real environment, which wins
func readEnv(path string) (map[string]string, error) {
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		fileEnv, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		env = fileEnv
	}
	for _, key := range []string{EnvDatabase, EnvLogLevel, EnvAddr} {
		if v, ok := os.LookupEnv(key); ok {
			env[key] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := env[EnvDatabase]; v != "" {
		c.Database.Path = v
	}
	if v := env[EnvLogLevel]; v != "" {
		c.Log.Level = v
	}
	if v := env[EnvAddr]; v != "" {
		if _, port, ok := strings.Cut(v, ":"); ok {
			if _, err := strconv.Atoi(port); err != nil {
				return fmt.Errorf("%s: bad port in %q", EnvAddr, v)
			}
		}
		c.Server.Addr = v
	}
	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves the configuration to the standard location
func (c *Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return c.SaveTo(filepath.Join(dir, "config.toml"))
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
