package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inspector/internal/core/errors"

	"github.com/gobwas/glob"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.ScanPaths) != 1 || cfg.ScanPaths[0] != "." {
		t.Fatalf("unexpected scan paths %v", cfg.ScanPaths)
	}
	if !cfg.Cache.IsEnabled() || cfg.Cache.MemoryEntries != 512 || cfg.Cache.MaxEntries != 10000 {
		t.Fatalf("unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 720*time.Hour {
		t.Fatalf("expected 720h ttl, got %s", cfg.Cache.TTL)
	}
	if len(cfg.Languages.Extensions) != 1 || cfg.Languages.Extensions[0] != ".php" {
		t.Fatalf("unexpected extensions %v", cfg.Languages.Extensions)
	}
	if !cfg.DB.IsEnabled() || cfg.DB.Path != "classes.db" || cfg.DB.BusyTimeout != 5*time.Second {
		t.Fatalf("unexpected db defaults %+v", cfg.DB)
	}
	if cfg.Observability.Address != "127.0.0.1:9464" {
		t.Fatalf("unexpected observability address %q", cfg.Observability.Address)
	}
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
version = 1
scan_paths = ["src", " lib "]

[cache]
enabled = false
memory_entries = 64
max_entries = 100
ttl = "48h"

[run]
workers = 4
timeout = "2m"
files_per_second = 50.0

[languages]
extensions = ["PHP", ".inc", ".php"]

[exclude]
dirs = ["vendor", "node_modules"]
files = ["*.blade.php"]

[check]
skip_dynamic_output = ["src/Debug/**"]

[db]
enabled = false
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if strings.Join(cfg.ScanPaths, ",") != "src,lib" {
		t.Fatalf("unexpected scan paths %v", cfg.ScanPaths)
	}
	if cfg.Cache.IsEnabled() || cfg.Cache.TTL != 48*time.Hour || cfg.Cache.MemoryEntries != 64 {
		t.Fatalf("unexpected cache %+v", cfg.Cache)
	}
	if cfg.Run.Workers != 4 || cfg.Run.Timeout != 2*time.Minute || cfg.Run.FilesPerSecond != 50 {
		t.Fatalf("unexpected run %+v", cfg.Run)
	}
	if strings.Join(cfg.Languages.Extensions, ",") != ".php,.inc" {
		t.Fatalf("unexpected extensions %v", cfg.Languages.Extensions)
	}
	if cfg.DB.IsEnabled() {
		t.Fatal("expected db disabled")
	}
	if len(cfg.Check.SkipDynamicOutput) != 1 {
		t.Fatalf("unexpected skip patterns %v", cfg.Check.SkipDynamicOutput)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"version", "version = 3\n", "unsupported config version"},
		{"negative workers", "[run]\nworkers = -1\n", "run.workers"},
		{"bad glob", "[exclude]\nfiles = [\"[abc\"]\n", "exclude.files[0]"},
		{"tracing without endpoint", "[observability]\nenable_tracing = true\n", "otlp_endpoint"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", "cache.ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("INSPECTOR_CACHE_ENABLED", "false")
	t.Setenv("INSPECTOR_CACHE_TTL", "1h")
	t.Setenv("INSPECTOR_RUN_WORKERS", "3")
	t.Setenv("INSPECTOR_RUN_FILES_PER_SECOND", "12.5")
	t.Setenv("INSPECTOR_DB_PATH", "other.db")
	t.Setenv("INSPECTOR_OBSERVABILITY_ENABLED", "true")
	t.Setenv("INSPECTOR_RUN_TIMEOUT", "not-a-duration")

	cfg := Default()
	ApplyEnvOverrides(cfg)
	if err := Finalize(cfg); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if cfg.Cache.IsEnabled() || cfg.Cache.TTL != time.Hour {
		t.Fatalf("unexpected cache %+v", cfg.Cache)
	}
	if cfg.Run.Workers != 3 || cfg.Run.FilesPerSecond != 12.5 {
		t.Fatalf("unexpected run %+v", cfg.Run)
	}
	if cfg.Run.Timeout != 0 {
		t.Fatalf("invalid duration override should be ignored, got %s", cfg.Run.Timeout)
	}
	if cfg.DB.Path != "other.db" || !cfg.Observability.Enabled {
		t.Fatalf("unexpected overrides db=%+v obs=%+v", cfg.DB, cfg.Observability)
	}
}

func TestFinalize_ValidationErrorCode(t *testing.T) {
	cfg := Default()
	cfg.Run.Workers = -2

	err := Finalize(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected %s code, got %v", errors.CodeValidationError, err)
	}
	if !strings.Contains(err.Error(), "run.workers") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestSkipDynamicOutputPatterns_ValidatedAsMatched(t *testing.T) {
	cfg := Default()
	cfg.Check.SkipDynamicOutput = []string{"src/*.php", "**/Debug/**"}
	if err := Finalize(cfg); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	shallow := glob.MustCompile(cfg.Check.SkipDynamicOutput[0], SkipDynamicOutputSeparator)
	if !shallow.Match("src/Kernel.php") {
		t.Error("expected src/*.php to match a direct child")
	}
	if shallow.Match("src/Http/Kernel.php") {
		t.Error("expected * not to cross the path separator")
	}
	deep := glob.MustCompile(cfg.Check.SkipDynamicOutput[1], SkipDynamicOutputSeparator)
	if !deep.Match("app/Debug/Dumper.php") {
		t.Error("expected ** to cross the path separator")
	}

	cfg = Default()
	cfg.Check.SkipDynamicOutput = []string{"src/[Debug"}
	err := Finalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "check.skip_dynamic_output[0]") {
		t.Fatalf("expected invalid skip pattern to be rejected, got %v", err)
	}
}
