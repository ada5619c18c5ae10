package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"plural-chat/pkg/logger"
)

type Config struct {
	Server ServerConfig
	Data   DataConfig
}

type ServerConfig struct {
	URL            string
	WebSocketURL   string
	RequestTimeout time.Duration
}

type DataConfig struct {
	// Dir holds the local Pebble database (credential + persisted UI state).
	Dir string
}

// fileConfig is the optional YAML overlay at <config dir>/config.yaml.
// Environment variables win over the file.
type fileConfig struct {
	ServerURL      string `yaml:"server_url"`
	WebSocketURL   string `yaml:"websocket_url"`
	RequestTimeout string `yaml:"request_timeout"`
	DataDir        string `yaml:"data_dir"`
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found: %v", err)
	}

	file := loadFile()

	serverURL := getEnvOrDefault("PLURAL_CHAT_SERVER", firstNonEmpty(file.ServerURL, "http://localhost:8000"))
	wsURL := getEnvOrDefault("PLURAL_CHAT_WS", firstNonEmpty(file.WebSocketURL, deriveWebSocketURL(serverURL)))

	timeout := 10 * time.Second
	if raw := firstNonEmpty(os.Getenv("PLURAL_CHAT_TIMEOUT"), file.RequestTimeout); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Fatal("Invalid request timeout %q: %v", raw, err)
		}
		timeout = parsed
	}

	return &Config{
		Server: ServerConfig{
			URL:            strings.TrimRight(serverURL, "/"),
			WebSocketURL:   wsURL,
			RequestTimeout: timeout,
		},
		Data: DataConfig{
			Dir: getEnvOrDefault("PLURAL_CHAT_DATA_DIR", firstNonEmpty(file.DataDir, defaultDataDir())),
		},
	}
}

func loadFile() fileConfig {
	var cfg fileConfig
	path := getEnvOrDefault("PLURAL_CHAT_CONFIG", filepath.Join(configDir(), "config.yaml"))
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Fatal("Invalid config file %s: %v", path, err)
	}
	return cfg
}

// deriveWebSocketURL maps the REST base to the realtime endpoint when no
// explicit websocket URL is configured.
func deriveWebSocketURL(serverURL string) string {
	ws := serverURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return strings.TrimRight(ws, "/") + "/ws"
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, "plural-chat")
}

func defaultDataDir() string {
	return filepath.Join(configDir(), "data")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
