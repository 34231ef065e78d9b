package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// defaultServerPort is the port the backend listens on when only a
	// host is known (matches the auto-detection heuristic of the web client).
	defaultServerPort = 5000

	// fallbackBaseURL is used when nothing else resolves.
	fallbackBaseURL = "http://192.168.1.19:5000"
)

// Config holds all configuration for the application
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Upload  UploadConfig  `yaml:"upload"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig holds backend address configuration
type APIConfig struct {
	// BaseURL is an explicit override; when set it wins over every
	// other resolution source.
	BaseURL string `yaml:"base_url"`
	// Host is the host the client believes it is running against, used
	// by the current-host heuristic when no override is set.
	Host string `yaml:"host"`
}

// StorageConfig holds local persistence configuration
type StorageConfig struct {
	Path string `yaml:"path"`
}

// UploadConfig holds image upload configuration
type UploadConfig struct {
	// MaxDimension bounds the longer image side; larger uploads are
	// downscaled client-side before transfer. Zero disables scaling.
	MaxDimension uint `yaml:"max_dimension"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies .env and
// environment overrides. A missing config file is not an error: the
// client runs fine on defaults plus whatever the settings store holds.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{Path: "inkbound.db"},
		Upload:  UploadConfig{MaxDimension: 1600},
		Log:     LogConfig{Level: "info"},
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional the same way the config file is
	_ = godotenv.Load()

	if v := os.Getenv("INKBOUND_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("INKBOUND_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("INKBOUND_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}

// ResolveBaseURL resolves the backend base address by priority:
// explicit override, then the current-host heuristic, then a stored
// auto-detected host, then the hardcoded fallback.
func ResolveBaseURL(override, currentHost, storedHost string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	if currentHost != "" && !isLoopback(currentHost) {
		return fmt.Sprintf("http://%s:%d", currentHost, defaultServerPort)
	}
	if storedHost != "" {
		return fmt.Sprintf("http://%s:%d", storedHost, defaultServerPort)
	}
	return fallbackBaseURL
}

// DetectedHost reports the host worth persisting for future runs, or
// "" when the current host carries no routing information.
func DetectedHost(currentHost string) string {
	if currentHost == "" || isLoopback(currentHost) {
		return ""
	}
	return currentHost
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1"
}
