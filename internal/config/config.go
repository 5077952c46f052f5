package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Port           int           `mapstructure:"port"`
	ModelPath      string        `mapstructure:"model_path"`
	PredictTimeout time.Duration `mapstructure:"predict_timeout"`
	Headless       bool          `mapstructure:"headless"`
	LogLevel       string        `mapstructure:"log_level"`
	Version        string        `mapstructure:"-"`
}

// EnvPrefix namespaces environment overrides, e.g. PREMIUM_MODEL_PATH
const EnvPrefix = "PREMIUM"

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("model_path", "insurance_model.gob")
	v.SetDefault("predict_timeout", 2*time.Second)
	v.SetDefault("headless", false)
	v.SetDefault("log_level", "INFO")
}

// Load resolves configuration from defaults, an optional config.yaml in
// the working directory or ./config, and PREMIUM_* environment variables.
// Flags bound to v by the caller take precedence over all of these.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ModelPath = strings.TrimSpace(cfg.ModelPath)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ModelPath == "" {
		return errors.New("model_path must not be empty")
	}
	if c.PredictTimeout <= 0 {
		return fmt.Errorf("predict_timeout must be positive, got %s", c.PredictTimeout)
	}
	return nil
}
