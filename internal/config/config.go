package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	// AI configures the server-held credential used by the analyze-input function.
	AI struct {
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"baseUrl"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ai"`
	Storage struct {
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"storage"`
	// Client holds the credential of the client-direct variant.
	Client struct {
		AIAPIKey string `yaml:"aiApiKey"`
	} `yaml:"client"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"GEMINI_API_KEY", &c.AI.APIKey},
		{"CLIENT_GEMINI_API_KEY", &c.Client.AIAPIKey},
		{"STORAGE_BASE_URL", &c.Storage.BaseURL},
		{"POSTGRES_URL", &c.Postgres.URL},
		{"REDIS_ADDR", &c.Redis.Addr},
	}
	for _, o := range overrides {
		if v, ok := lookup(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
