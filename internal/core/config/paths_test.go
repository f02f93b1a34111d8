package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePaths_DefaultLayout(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "composer.json"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.ScanPaths = []string{"src"}

	got, err := ResolvePaths(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectRoot != filepath.Clean(root) {
		t.Fatalf("expected project root %q, got %q", root, got.ProjectRoot)
	}
	if got.CacheDir != filepath.Join(root, "data", "cache") {
		t.Fatalf("unexpected cache dir: %q", got.CacheDir)
	}
	if got.DBPath != filepath.Join(root, "data", "database", "classes.db") {
		t.Fatalf("unexpected db path: %q", got.DBPath)
	}
	if len(got.ScanPaths) != 1 || got.ScanPaths[0] != src {
		t.Fatalf("unexpected scan paths: %v", got.ScanPaths)
	}
}

func TestResolvePaths_AbsoluteOverridesAndDisabledCache(t *testing.T) {
	root := t.TempDir()
	dbPath := filepath.Join(root, "custom", "classes.db")
	disabled := false

	cfg := Default()
	cfg.Paths.ProjectRoot = root
	cfg.DB.Path = dbPath
	cfg.Cache.Enabled = &disabled

	got, err := ResolvePaths(cfg, root)
	if err != nil {
		t.Fatal(err)
	}
	if got.DBPath != dbPath {
		t.Fatalf("unexpected db path: %q", got.DBPath)
	}
	if got.CacheDir != "" {
		t.Fatalf("expected disabled cache to resolve to empty dir, got %q", got.CacheDir)
	}
}

func TestResolvePaths_EmptyCwd(t *testing.T) {
	if _, err := ResolvePaths(Default(), " "); err == nil {
		t.Fatal("expected error for empty cwd")
	}
}

func TestDetectProjectRoot_WalksUpToMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "Http")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "Kernel.php")
	if err := os.WriteFile(file, []byte("<?php\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := DetectProjectRoot([]string{"", file}, "/fallback"); got != root {
		t.Fatalf("expected %q, got %q", root, got)
	}
}

func TestResolveRelative(t *testing.T) {
	cases := []struct{ base, value, want string }{
		{"/project", "", "/project"},
		{"/project", " data/cache ", "/project/data/cache"},
		{"/project", "/abs/dir/", "/abs/dir"},
		{"/project/", "../other", "/other"},
	}
	for _, tc := range cases {
		if got := ResolveRelative(tc.base, tc.value); got != filepath.FromSlash(tc.want) {
			t.Errorf("ResolveRelative(%q, %q) = %q, want %q", tc.base, tc.value, got, tc.want)
		}
	}
}
