package config

import (
	"os"

	"github.com/rohanthewiz/serr"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "plugyard.yml"

// Config holds application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
}

type ServerConfig struct {
	Address string `yaml:"address"`
	BaseURL string `yaml:"base_url"`
}

type DBConfig struct {
	// Path is the DuckDB file. Empty means in-memory.
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Backend   string `yaml:"backend"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PublicURL string `yaml:"public_url"`

	// Credentials come from the environment only, never from the file
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// globalConfig holds the application configuration instance
var globalConfig *Config

// Initialize loads configuration from the optional YAML file named by
// PLUGYARD_CONFIG (or ./plugyard.yml when present), then applies
// PLUGYARD_* environment overrides on top
func Initialize() error {
	cfg, err := Load(os.Getenv("PLUGYARD_CONFIG"))
	if err != nil {
		return err
	}
	globalConfig = cfg
	return nil
}

// Get returns the global configuration instance
func Get() *Config {
	if globalConfig == nil {
		if err := Initialize(); err != nil {
			globalConfig = defaults()
		}
	}
	return globalConfig
}

// Load reads the config file at path and fills in defaults and env
// overrides. An empty path falls back to ./plugyard.yml when that file
// exists; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return nil, serr.Wrap(err, "could not read config file", "path", path)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, serr.Wrap(err, "could not parse config file", "path", path)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address: ":8000",
			BaseURL: "http://localhost:8000",
		},
		DB: DBConfig{
			Path: "data/plugyard.db",
		},
		Storage: StorageConfig{
			Backend: "local",
			Dir:     "data/files",
			Region:  "us-east-1",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Address = envOr("PLUGYARD_ADDRESS", cfg.Server.Address)
	cfg.Server.BaseURL = envOr("PLUGYARD_BASE_URL", cfg.Server.BaseURL)
	cfg.DB.Path = envOr("PLUGYARD_DB_PATH", cfg.DB.Path)
	cfg.Storage.Backend = envOr("PLUGYARD_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Dir = envOr("PLUGYARD_STORAGE_DIR", cfg.Storage.Dir)
	cfg.Storage.Bucket = envOr("PLUGYARD_S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = envOr("PLUGYARD_S3_REGION", cfg.Storage.Region)
	cfg.Storage.Endpoint = envOr("PLUGYARD_S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.PublicURL = envOr("PLUGYARD_S3_PUBLIC_URL", cfg.Storage.PublicURL)
	cfg.Storage.AccessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Storage.SecretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8000"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8000"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data/files"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
