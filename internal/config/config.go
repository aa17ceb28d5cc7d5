package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port         string        `mapstructure:"port"`
	DBDSN        string        `mapstructure:"db_dsn"`
	TemplatesDir string        `mapstructure:"templates_dir"`
	FormsFile    string        `mapstructure:"forms_file"`
	LogLevel     string        `mapstructure:"log_level"`
	LogFormat    string        `mapstructure:"log_format"`
	CSRFEnabled  bool          `mapstructure:"csrf_enabled"`
	Redis        RedisConfig   `mapstructure:",squash"`
	API          APIConfig     `mapstructure:",squash"`
	Geocoder     GeoConfig     `mapstructure:",squash"`
	Forms        FormsDefaults `mapstructure:",squash"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db"`
}

// APIConfig points at the REST backend the reservation forms submit to.
type APIConfig struct {
	BaseURL     string        `mapstructure:"api_base_url"`
	Timeout     time.Duration `mapstructure:"api_timeout"`
	ProfilePath string        `mapstructure:"profile_path"`
	CatalogPath string        `mapstructure:"catalog_path"`
	SyncOnStart bool          `mapstructure:"catalog_sync"`
}

type GeoConfig struct {
	URL       string        `mapstructure:"geocoder_url"`
	UserAgent string        `mapstructure:"geocoder_user_agent"`
	Debounce  time.Duration `mapstructure:"search_debounce"`
}

type FormsDefaults struct {
	AutoCloseDelay time.Duration `mapstructure:"auto_close_delay"`
}

var defaults = map[string]any{
	"port":                "8080",
	"db_dsn":              "servo.db",
	"templates_dir":       "./web/templates",
	"forms_file":          "./configs/forms.yaml",
	"log_level":           "info",
	"log_format":          "json",
	"csrf_enabled":        true,
	"redis_addr":          "",
	"redis_password":      "",
	"redis_db":            0,
	"api_base_url":        "http://localhost:5000/api",
	"api_timeout":         "10s",
	"profile_path":        "/users/me",
	"catalog_path":        "/catalog",
	"catalog_sync":        false,
	"geocoder_url":        "https://nominatim.openstreetmap.org",
	"geocoder_user_agent": "servo/1.0",
	"search_debounce":     "500ms",
	"auto_close_delay":    "2s",
}

// Load reads .env (when present) and the process environment. Keys are the
// upper-cased mapstructure names, e.g. API_BASE_URL.
func Load() (Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for k, val := range defaults {
		v.SetDefault(k, val)
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if cfg.Forms.AutoCloseDelay < 0 {
		return fmt.Errorf("AUTO_CLOSE_DELAY must not be negative")
	}
	return nil
}
