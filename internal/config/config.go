package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode              string        `mapstructure:"mode"`
	Port              int           `mapstructure:"port"`
	ReadLimit         int64         `mapstructure:"read_limit"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatBackoff  time.Duration `mapstructure:"heartbeat_backoff"`
	DeepLAPIURL       string        `mapstructure:"deepl_api_url"`
	DeepLAPIKey       string        `mapstructure:"deepl_api_key"`
	WhisperBinary     string        `mapstructure:"whisper_binary"`
	WhisperModel      string        `mapstructure:"whisper_model"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8000)
	v.SetDefault("read_limit", 1048576)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("heartbeat_interval", "1s")
	v.SetDefault("heartbeat_backoff", "5s")
	v.SetDefault("deepl_api_url", "")
	v.SetDefault("deepl_api_key", "")
	v.SetDefault("whisper_binary", "")
	v.SetDefault("whisper_model", "tiny")

	// Secrets come from the environment, e.g. SUBTEXT_DEEPL_API_KEY.
	v.SetEnvPrefix("subtext")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
