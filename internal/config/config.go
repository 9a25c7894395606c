package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Joseda-hg/lazyjobs/internal/model"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIURL     string `json:"api_url" env:"LAZYJOBS_API_URL"`
	DBPath     string `json:"db_path" env:"LAZYJOBS_DB"`
	TokenPath  string `json:"token_path" env:"LAZYJOBS_TOKEN"`
	WebEnabled bool   `json:"web_enabled" env:"LAZYJOBS_WEB"`
	WebPort    int    `json:"web_port" env:"LAZYJOBS_WEB_PORT"`

	Preferences Preferences `json:"preferences"`
}

// Preferences are UI choices restored at startup and saved whenever they change.
type Preferences struct {
	DarkMode bool           `json:"dark_mode"`
	ViewMode model.ViewMode `json:"view_mode"`
}

func Default() Config {
	return Config{
		APIURL:      "http://localhost:5000/api",
		WebPort:     8080,
		Preferences: Preferences{ViewMode: model.ViewTable},
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazyjobs", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.Preferences = config.Preferences.normalized()
	return config, nil
}

// ApplyEnv overrides fields whose environment variable is set.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func (p Preferences) normalized() Preferences {
	if p.ViewMode != model.ViewBoard {
		p.ViewMode = model.ViewTable
	}
	return p
}

// PreferenceStore saves preference changes back into the config file.
type PreferenceStore struct {
	path string
	cfg  Config
}

func NewPreferenceStore(path string, cfg Config) *PreferenceStore {
	return &PreferenceStore{path: path, cfg: cfg}
}

func (s *PreferenceStore) Get() Preferences {
	return s.cfg.Preferences
}

func (s *PreferenceStore) Set(prefs Preferences) error {
	s.cfg.Preferences = prefs.normalized()
	if s.path == "" {
		return nil
	}
	return Save(s.path, s.cfg)
}
