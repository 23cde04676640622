package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/christopherklint97/kalendr/internal/assistant"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Assistant AssistantConfig `toml:"assistant"`
	Remote    RemoteConfig    `toml:"remote"`
	Calendar  CalendarConfig  `toml:"calendar"`
	Digest    DigestConfig    `toml:"digest"`
	Log       LogConfig       `toml:"log"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

type AssistantConfig struct {
	AnalysisWindowDays int      `toml:"analysis_window_days"`
	SlotWindowDays     int      `toml:"slot_window_days"`
	CandidateTimes     []string `toml:"candidate_times"`
	SuggestionLimit    int      `toml:"suggestion_limit"`
}

// Options converts the section into engine options.
func (a AssistantConfig) Options() assistant.Options {
	return assistant.Options{
		AnalysisWindowDays: a.AnalysisWindowDays,
		SlotWindowDays:     a.SlotWindowDays,
		CandidateTimes:     a.CandidateTimes,
		SuggestionLimit:    a.SuggestionLimit,
	}
}

type RemoteConfig struct {
	Provider       string `toml:"provider"` // "", "claude-cli" or "openai"
	Model          string `toml:"model"`
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type CalendarConfig struct {
	Source  string `toml:"source"` // ICS URL or file path
	UserID  string `toml:"user_id"`
	GroupID string `toml:"group_id"`
}

type DigestConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"`
	UserID  string `toml:"user_id"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

func DefaultConfig() Config {
	opts := assistant.DefaultOptions()
	return Config{
		Server: ServerConfig{
			ListenAddr: "127.0.0.1:8080",
		},
		Assistant: AssistantConfig{
			AnalysisWindowDays: opts.AnalysisWindowDays,
			SlotWindowDays:     opts.SlotWindowDays,
			CandidateTimes:     opts.CandidateTimes,
			SuggestionLimit:    opts.SuggestionLimit,
		},
		Remote: RemoteConfig{
			Provider:       "",
			Model:          "meta-llama/Llama-3.1-8B-Instruct",
			BaseURL:        "https://router.huggingface.co/v1",
			TimeoutSeconds: 20,
		},
		Digest: DigestConfig{
			Enabled: false,
			Cron:    "0 8 * * 1-5",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "kalendr"), nil
}

func ConfigPath() (string, error) {
	if v := os.Getenv("KALENDR_CONFIG"); v != "" {
		return v, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist, and applies environment overrides.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KALENDR_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("KALENDR_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("HF_TOKEN"); v != "" {
		cfg.Remote.APIKey = v
	}
	if v := os.Getenv("KALENDR_REMOTE_API_KEY"); v != "" {
		cfg.Remote.APIKey = v
	}
	if v := os.Getenv("KALENDR_REMOTE_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("KALENDR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) Validate() error {
	if err := c.Assistant.Options().Validate(); err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	switch c.Remote.Provider {
	case "", "claude-cli", "openai":
	default:
		return fmt.Errorf("remote: unknown provider %q", c.Remote.Provider)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

func EnsureConfigDir() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// WriteDefault writes DefaultConfig to path as TOML.
func WriteDefault(path string) error {
	out, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}

// SaveCalendarTarget persists the import target using a read-modify-write
// so unrelated settings survive.
func SaveCalendarTarget(userID, groupID string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	cal, ok := cfg["calendar"].(map[string]any)
	if !ok {
		cal = make(map[string]any)
	}
	cal["user_id"] = userID
	cal["group_id"] = groupID
	cfg["calendar"] = cal

	if err := EnsureConfigDir(); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
