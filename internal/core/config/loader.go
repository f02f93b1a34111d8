package config

import (
	"os"
	"strings"
	"time"

	"inspector/internal/core/errors"

	"github.com/BurntSushi/toml"
)

const (
	DefaultFileName      = "inspector.toml"
	defaultMemoryEntries = 512
	defaultMaxEntries    = 10000
	defaultCacheTTL      = 30 * 24 * time.Hour
)

// Load reads the TOML file at path, applies defaults and validates the
// result. Environment overrides are applied separately by the caller.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	if err := Finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a finalized configuration for runs without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	normalize(cfg)
	return cfg
}

// Finalize applies defaults and normalization, then validates cfg. It is
// safe to call again after env overrides have been applied.
func Finalize(cfg *Config) error {
	applyDefaults(cfg)
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "invalid configuration")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}

	if strings.TrimSpace(cfg.Paths.CacheDir) == "" {
		cfg.Paths.CacheDir = "data/cache"
	}
	if strings.TrimSpace(cfg.Paths.DatabaseDir) == "" {
		cfg.Paths.DatabaseDir = "data/database"
	}

	if cfg.Cache.MemoryEntries == 0 {
		cfg.Cache.MemoryEntries = defaultMemoryEntries
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = defaultMaxEntries
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = defaultCacheTTL
	}

	if len(cfg.Languages.Extensions) == 0 {
		cfg.Languages.Extensions = []string{".php"}
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "classes.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
}

func normalize(cfg *Config) {
	cfg.ScanPaths = trimNonEmpty(cfg.ScanPaths)
	cfg.Paths.ProjectRoot = strings.TrimSpace(cfg.Paths.ProjectRoot)
	cfg.Paths.CacheDir = strings.TrimSpace(cfg.Paths.CacheDir)
	cfg.Paths.DatabaseDir = strings.TrimSpace(cfg.Paths.DatabaseDir)
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.Observability.Address = strings.TrimSpace(cfg.Observability.Address)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	exts := make([]string, 0, len(cfg.Languages.Extensions))
	seen := make(map[string]bool, len(cfg.Languages.Extensions))
	for _, ext := range cfg.Languages.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	cfg.Languages.Extensions = exts

	cfg.Exclude.Dirs = trimNonEmpty(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimNonEmpty(cfg.Exclude.Files)
	cfg.Check.SkipDynamicOutput = trimNonEmpty(cfg.Check.SkipDynamicOutput)
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
