// Package config loads DuFy settings from built-in defaults, an optional TOML
// file and the process environment (including a .env file), in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when no explicit config path is given and it exists.
const DefaultFile = "dufy.toml"

type Config struct {
	Port      string `toml:"port"`
	StaticDir string `toml:"static_dir"`

	CatalogPath string `toml:"catalog_path"`
	DataDir     string `toml:"data_dir"`

	LogLevel      string `toml:"log_level"`
	LogFile       string `toml:"log_file"`
	LogMaxSizeMB  int    `toml:"log_max_size_mb"`
	LogMaxBackups int    `toml:"log_max_backups"`

	AllowedOrigins []string `toml:"allowed_origins"`

	EmbedBackend string `toml:"embed_backend"`
	OllamaHost   string `toml:"ollama_host"`
	EmbedModel   string `toml:"embed_model"`
	IndexDim     int    `toml:"index_dim"`

	SearchSeed   int64 `toml:"search_seed"`
	SearchTopK   int   `toml:"search_top_k"`
	FallbackSize int   `toml:"fallback_size"`

	SpotifyClientID     string        `toml:"spotify_client_id"`
	SpotifyClientSecret string        `toml:"spotify_client_secret"`
	SpotifyPlaylistID   string        `toml:"spotify_playlist_id"`
	SpotifyMarket       string        `toml:"spotify_market"`
	TrendingCacheTTL    time.Duration `toml:"trending_cache_ttl"`
}

// Embedding backends.
const (
	BackendLocal  = "local"
	BackendOllama = "ollama"
)

func Default() Config {
	return Config{
		Port:              "8000",
		StaticDir:         "static",
		CatalogPath:       "data/songs.csv",
		DataDir:           "data",
		LogLevel:          "info",
		LogFile:           "logs/dufy.log",
		LogMaxSizeMB:      10,
		LogMaxBackups:     5,
		AllowedOrigins:    []string{"*"},
		EmbedBackend:      BackendLocal,
		OllamaHost:        "http://localhost:11434",
		EmbedModel:        "nomic-embed-text",
		IndexDim:          384,
		SearchTopK:        30,
		FallbackSize:      20,
		SpotifyPlaylistID: "1KNl4AYfgZtOVm9KHkhPTF",
		SpotifyMarket:     "US",
		TrendingCacheTTL:  15 * time.Minute,
	}
}

// Load builds the configuration. An empty path falls back to DefaultFile when
// present; an explicit path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.StaticDir = envOrDefault("STATIC_DIR", cfg.StaticDir)
	cfg.CatalogPath = envOrDefault("CATALOG_PATH", cfg.CatalogPath)
	cfg.DataDir = envOrDefault("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.EmbedBackend = strings.ToLower(envOrDefault("EMBED_BACKEND", cfg.EmbedBackend))
	cfg.OllamaHost = envOrDefault("OLLAMA_HOST", cfg.OllamaHost)
	cfg.EmbedModel = envOrDefault("EMBED_MODEL", cfg.EmbedModel)
	cfg.SpotifyClientID = envOrDefault("SPOTIFY_CLIENT_ID", cfg.SpotifyClientID)
	cfg.SpotifyClientSecret = envOrDefault("SPOTIFY_CLIENT_SECRET", cfg.SpotifyClientSecret)
	cfg.SpotifyPlaylistID = envOrDefault("SPOTIFY_PLAYLIST_ID", cfg.SpotifyPlaylistID)
	cfg.SpotifyMarket = envOrDefault("SPOTIFY_MARKET", cfg.SpotifyMarket)

	// LOG_FILE may be set to empty on purpose to disable the file sink.
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.LogFile = v
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		envInt("LOG_MAX_SIZE_MB", &cfg.LogMaxSizeMB),
		envInt("LOG_MAX_BACKUPS", &cfg.LogMaxBackups),
		envInt("INDEX_DIM", &cfg.IndexDim),
		envInt("SEARCH_TOP_K", &cfg.SearchTopK),
		envInt("FALLBACK_SIZE", &cfg.FallbackSize),
	)

	if v := os.Getenv("SEARCH_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SEARCH_SEED: %w", err))
		} else {
			cfg.SearchSeed = n
		}
	}

	if v := os.Getenv("TRENDING_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("TRENDING_CACHE_TTL: %w", err))
		} else {
			cfg.TrendingCacheTTL = d
		}
	}

	return errors.Join(errs...)
}

// Validate rejects settings the rest of the service cannot work with.
func (c Config) Validate() error {
	switch c.EmbedBackend {
	case BackendLocal, BackendOllama:
	default:
		return fmt.Errorf("unknown embed backend %q (want %q or %q)", c.EmbedBackend, BackendLocal, BackendOllama)
	}
	if c.IndexDim <= 0 {
		return fmt.Errorf("index dim must be positive, got %d", c.IndexDim)
	}
	if c.SearchTopK < 0 || c.FallbackSize < 0 {
		return errors.New("search top k and fallback size must not be negative")
	}
	return nil
}

// SpotifyEnabled reports whether trending tracks can be fetched.
func (c Config) SpotifyEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
