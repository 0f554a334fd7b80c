package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServerAddress    string       `json:"serverAddress"`
	DatabasePath     string       `json:"databasePath"`
	DatabaseURL      string       `json:"databaseUrl"`
	DefaultAlbumName string       `json:"defaultAlbumName"`
	PhotoStorage     PhotoStorage `json:"photoStorage"`
	Compression      Compression  `json:"compression"`
	Security         Security     `json:"security"`
}

// UsePostgres returns true if PostgreSQL should be used
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// PhotoStorage configuration
type PhotoStorage struct {
	BasePath          string   `json:"basePath"`
	MaxFileSizeMB     int64    `json:"maxFileSizeMB"`
	AllowedExtensions []string `json:"allowedExtensions"`
}

// Compression configures the upload compression pipeline.
type Compression struct {
	Enabled       bool    `json:"enabled"`
	MaxWidth      int     `json:"maxWidth"`
	MaxHeight     int     `json:"maxHeight"`
	Quality       float64 `json:"quality"`
	MaxFileSizeKB int64   `json:"maxFileSizeKB"`
	Format        string  `json:"format"`
}

// Security configuration
type Security struct {
	APIKey       string `json:"apiKey"`
	APIKeyHeader string `json:"apiKeyHeader"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		ServerAddress:    ":5000",
		DatabasePath:     "gallery.db",
		DefaultAlbumName: "All Photos",
		PhotoStorage: PhotoStorage{
			BasePath:      "./photos",
			MaxFileSizeMB: 50,
			AllowedExtensions: []string{
				".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".heic", ".heif",
			},
		},
		Compression: Compression{
			Enabled:       true,
			MaxWidth:      1920,
			MaxHeight:     1080,
			Quality:       0.8,
			MaxFileSizeKB: 2048,
			Format:        "jpeg",
		},
		Security: Security{
			APIKey:       "CHANGE_THIS_TO_A_SECURE_API_KEY_AT_LEAST_32_CHARS",
			APIKeyHeader: "X-API-Key",
		},
	}
}

// Load loads configuration from file or environment
func Load() (*Config, error) {
	cfg := defaultConfig()

	// Try to load from config file
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override from environment variables
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.ServerAddress = addr
	}
	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if basePath := os.Getenv("PHOTO_STORAGE_PATH"); basePath != "" {
		cfg.PhotoStorage.BasePath = basePath
	}
	if apiKey := os.Getenv("API_KEY"); apiKey != "" {
		cfg.Security.APIKey = apiKey
	}
	if name := os.Getenv("DEFAULT_ALBUM_NAME"); name != "" {
		cfg.DefaultAlbumName = name
	}

	// Compression overrides
	if enabled := os.Getenv("COMPRESSION_ENABLED"); enabled != "" {
		cfg.Compression.Enabled = enabled == "true" || enabled == "1"
	}
	if quality := os.Getenv("COMPRESSION_QUALITY"); quality != "" {
		if q, err := strconv.ParseFloat(quality, 64); err == nil && q > 0 && q <= 1 {
			cfg.Compression.Quality = q
		}
	}
	if maxKB := os.Getenv("COMPRESSION_MAX_FILE_SIZE_KB"); maxKB != "" {
		if kb, err := strconv.ParseInt(maxKB, 10, 64); err == nil && kb > 0 {
			cfg.Compression.MaxFileSizeKB = kb
		}
	}

	// Ensure photo storage directory exists
	if err := os.MkdirAll(cfg.PhotoStorage.BasePath, 0755); err != nil {
		return nil, err
	}

	// Make base path absolute
	absPath, err := filepath.Abs(cfg.PhotoStorage.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.PhotoStorage.BasePath = absPath

	return cfg, nil
}
