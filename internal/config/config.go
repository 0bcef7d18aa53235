package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig collects everything needed to run the service.
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	SessionSecret string
	GinMode       string
	UploadDir     string
	UploadURLPath string
}

// fileConfig mirrors the optional YAML config file. Every field is
// optional; environment variables win over file values.
type fileConfig struct {
	ListenAddr    string `yaml:"listen_addr"`
	Port          string `yaml:"port"`
	DatabasePath  string `yaml:"database_path"`
	SessionSecret string `yaml:"session_secret"`
	GinMode       string `yaml:"gin_mode"`
	UploadDir     string `yaml:"upload_dir"`
	UploadURLPath string `yaml:"upload_url_path"`
}

// Load builds the configuration from the optional YAML file, environment
// variables and safe defaults, in that order of increasing precedence.
// The file path comes from CONFIG_FILE and defaults to carelog.yaml; a
// missing default file is not an error.
func Load() (AppConfig, error) {
	file, err := loadFile()
	if err != nil {
		return AppConfig{}, err
	}

	cfg := AppConfig{
		Port:          firstNonEmpty(os.Getenv("PORT"), file.Port, "8080"),
		DatabasePath:  firstNonEmpty(os.Getenv("DATABASE_PATH"), file.DatabasePath, "carelog.db"),
		SessionSecret: firstNonEmpty(os.Getenv("SESSION_SECRET"), file.SessionSecret, "carelog-dev-secret"),
		GinMode:       firstNonEmpty(os.Getenv("GIN_MODE"), file.GinMode, "release"),
		UploadDir:     firstNonEmpty(os.Getenv("UPLOAD_DIR"), file.UploadDir, "data/uploads"),
		UploadURLPath: firstNonEmpty(os.Getenv("UPLOAD_URL_PATH"), file.UploadURLPath, "/uploads"),
	}
	cfg.ListenAddr = firstNonEmpty(os.Getenv("LISTEN_ADDR"), file.ListenAddr, fmt.Sprintf(":%s", cfg.Port))

	return cfg, nil
}

func loadFile() (fileConfig, error) {
	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	explicit := path != ""
	if !explicit {
		path = "carelog.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return fileConfig{}, nil
		}
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
