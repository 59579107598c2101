package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings backends.
const (
	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

// Config holds all process configuration. User settings (API key, model)
// live in the settings store, not here.
type Config struct {
	LLMBaseURL      string
	SettingsBackend string
	SettingsPath    string
	DBPath          string
	Vaults          map[string]string // vault name -> root directory
	APIPort         string
	LogLevel        slog.Level
	LogFormat       string
	ModelCacheTTL   time.Duration
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LLMBaseURL:      getEnv("LLM_BASE_URL", "https://api.openai.com"),
		SettingsBackend: strings.ToLower(getEnv("SETTINGS_BACKEND", BackendTOML)),
		DBPath:          getEnv("DB_PATH", "./data/libllm.db"),
		APIPort:         getEnv("API_PORT", "9000"),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	switch cfg.SettingsBackend {
	case BackendTOML, BackendSQLite:
	default:
		return nil, fmt.Errorf("SETTINGS_BACKEND must be %q or %q, got %q", BackendTOML, BackendSQLite, cfg.SettingsBackend)
	}

	cfg.SettingsPath = os.Getenv("SETTINGS_PATH")
	if cfg.SettingsPath == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		cfg.SettingsPath = filepath.Join(dir, "settings.toml")
	}

	vaults, err := ParseVaults(os.Getenv("VAULTS"))
	if err != nil {
		return nil, err
	}
	cfg.Vaults = vaults

	level, err := ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	ttl, err := time.ParseDuration(getEnv("MODEL_CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("MODEL_CACHE_TTL must be a duration: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("MODEL_CACHE_TTL must be greater than 0")
	}
	cfg.ModelCacheTTL = ttl

	return cfg, nil
}

// NeedsDatabase reports whether any component stores data in SQLite.
func (c *Config) NeedsDatabase() bool {
	return c.SettingsBackend == BackendSQLite || len(c.Vaults) > 0
}

// VaultNames returns the configured vault names in order.
func (c *Config) VaultNames() []string {
	names := make([]string, 0, len(c.Vaults))
	for name := range c.Vaults {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigDir returns the directory holding user settings:
// $LIBLLM_CONFIG_DIR, else $XDG_CONFIG_HOME/libllm, else ~/.config/libllm.
func ConfigDir() (string, error) {
	if dir := os.Getenv("LIBLLM_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "libllm"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(home, ".config", "libllm"), nil
}

// ParseVaults parses "name=path,name=path". An empty string yields no vaults.
func ParseVaults(raw string) (map[string]string, error) {
	vaults := make(map[string]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, path, ok := strings.Cut(entry, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("VAULTS entry %q must be name=path", entry)
		}
		if _, dup := vaults[name]; dup {
			return nil, fmt.Errorf("VAULTS names vault %q twice", name)
		}
		vaults[name] = path
	}
	return vaults, nil
}

// ParseLogLevel parses debug, info, warn or error.
func ParseLogLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// loadDotEnv loads .env from the working directory, or from the nearest
// parent that has one. Load errors are ignored.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
