package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	ThreatIntel ThreatIntelConfig
	ML          MLConfig
}

type AppConfig struct {
	Env  string
	Port int
	Host string
}

type ThreatIntelConfig struct {
	SafeBrowsingKey string
	VirusTotalKey   string
	// URLhaus works without a key; an Auth-Key raises rate limits
	URLHausKey string
	Timeout    time.Duration
}

type MLConfig struct {
	// ModelPath points at the optional classifier artifact. Empty means
	// run without the model.
	ModelPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/etc/urlsentinel")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables
	bindEnvVars()

	// Set defaults
	setDefaults()

	// Try to read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("Error reading config file", "error", err)
		}
	}

	config := &Config{
		App: AppConfig{
			Env:  viper.GetString("APP_ENV"),
			Port: viper.GetInt("APP_PORT"),
			Host: viper.GetString("APP_HOST"),
		},
		ThreatIntel: ThreatIntelConfig{
			SafeBrowsingKey: viper.GetString("SAFEBROWSING_API_KEY"),
			VirusTotalKey:   viper.GetString("VIRUSTOTAL_API_KEY"),
			URLHausKey:      viper.GetString("URLHAUS_AUTH_KEY"),
			Timeout:         viper.GetDuration("THREAT_INTEL_TIMEOUT"),
		},
		ML: MLConfig{
			ModelPath: viper.GetString("ML_MODEL_PATH"),
		},
	}

	return config, nil
}

func bindEnvVars() {
	// App
	viper.BindEnv("APP_ENV")
	viper.BindEnv("APP_PORT")
	viper.BindEnv("APP_HOST")

	// Threat Intel
	viper.BindEnv("SAFEBROWSING_API_KEY")
	viper.BindEnv("VIRUSTOTAL_API_KEY")
	viper.BindEnv("URLHAUS_AUTH_KEY")
	viper.BindEnv("THREAT_INTEL_TIMEOUT")

	// ML
	viper.BindEnv("ML_MODEL_PATH")
}

func setDefaults() {
	// App defaults
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_HOST", "0.0.0.0")

	// Threat Intel defaults
	viper.SetDefault("THREAT_INTEL_TIMEOUT", 10*time.Second)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func SetupLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
