// Package config собирает настройки из окружения (.env), TOML-файла и
// значений по умолчанию, именно в таком порядке приоритета.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	EnvDBPath        = "KITCHEN_DB_PATH"
	EnvHTTPPort      = "KITCHEN_HTTP_PORT"
	EnvAPISecret     = "KITCHEN_API_SECRET"
	EnvTickMs        = "KITCHEN_TICK_MS"
	EnvNotifySeconds = "KITCHEN_NOTIFY_SECONDS"
	EnvTimerName     = "KITCHEN_TIMER_NAME"

	DefaultHTTPPort      = "8082"
	DefaultTickMs        = 250
	DefaultNotifySeconds = 12
)

var envFiles = []string{".env", "../.env", "../../.env"}

type Config struct {
	DBPath       string
	HTTPPort     string
	APISecret    string
	TickInterval time.Duration
	NotifyWindow time.Duration
	TimerName    string
	ConfigPath   string
}

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Timer   TimerConfig   `toml:"timer"`
}

type StorageConfig struct {
	Path *string `toml:"path"`
}

type ServerConfig struct {
	Port   *string `toml:"port"`
	Secret *string `toml:"secret"`
}

type TimerConfig struct {
	TickMs        *int    `toml:"tick-ms"`
	NotifySeconds *int    `toml:"notify-seconds"`
	Name          *string `toml:"name"`
}

// LoadEnvFiles подгружает первый найденный .env.
func LoadEnvFiles() {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err == nil {
			log.Printf("Загружен файл с переменными окружения: %s", file)
			return
		}
	}
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Load reads .env, then the TOML file at path (DefaultConfigPath when empty),
// then applies the environment on top.
func Load(path string) (Config, error) {
	LoadEnvFiles()

	if path == "" {
		path = DefaultConfigPath()
	}
	file, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Resolve(file, path), nil
}

// Resolve merges file values and the environment over the defaults.
func Resolve(file FileConfig, path string) Config {
	cfg := Config{
		DBPath:       DefaultDBPath(),
		HTTPPort:     DefaultHTTPPort,
		TickInterval: DefaultTickMs * time.Millisecond,
		NotifyWindow: DefaultNotifySeconds * time.Second,
		ConfigPath:   path,
	}

	if file.Storage.Path != nil {
		cfg.DBPath = *file.Storage.Path
	}
	if file.Server.Port != nil {
		cfg.HTTPPort = *file.Server.Port
	}
	if file.Server.Secret != nil {
		cfg.APISecret = *file.Server.Secret
	}
	if file.Timer.TickMs != nil && *file.Timer.TickMs > 0 {
		cfg.TickInterval = time.Duration(*file.Timer.TickMs) * time.Millisecond
	}
	if file.Timer.NotifySeconds != nil && *file.Timer.NotifySeconds > 0 {
		cfg.NotifyWindow = time.Duration(*file.Timer.NotifySeconds) * time.Second
	}
	if file.Timer.Name != nil {
		cfg.TimerName = *file.Timer.Name
	}

	cfg.DBPath = getEnvOrDefault(EnvDBPath, cfg.DBPath)
	cfg.HTTPPort = getEnvOrDefault(EnvHTTPPort, cfg.HTTPPort)
	cfg.APISecret = getEnvOrDefault(EnvAPISecret, cfg.APISecret)
	cfg.TimerName = getEnvOrDefault(EnvTimerName, cfg.TimerName)
	cfg.TickInterval = time.Duration(getEnvInt(EnvTickMs, int(cfg.TickInterval/time.Millisecond))) * time.Millisecond
	cfg.NotifyWindow = time.Duration(getEnvInt(EnvNotifySeconds, int(cfg.NotifyWindow/time.Second))) * time.Second

	return cfg
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию, если переменная не найдена
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := getEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Printf("ОШИБКА: некорректное значение %s=%q | Используем значение по умолчанию: %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
