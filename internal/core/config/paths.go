package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// projectMarkers identify a project root, checked in order in each directory.
var projectMarkers = []string{"composer.json", ".git", DefaultFileName}

type ResolvedPaths struct {
	ProjectRoot string
	// CacheDir is empty when the disk cache tier is disabled.
	CacheDir    string
	DatabaseDir string
	DBPath      string
	ScanPaths   []string
}

// ResolvePaths anchors every configured path. Scan paths are relative to
// cwd; cache and database paths are relative to the project root.
func ResolvePaths(cfg *Config, cwd string) (ResolvedPaths, error) {
	if strings.TrimSpace(cwd) == "" {
		return ResolvedPaths{}, errors.New("cwd must not be empty")
	}

	scan := make([]string, 0, len(cfg.ScanPaths))
	for _, p := range cfg.ScanPaths {
		scan = append(scan, ResolveRelative(cwd, p))
	}

	root := ResolveRelative(cwd, cfg.Paths.ProjectRoot)
	if strings.TrimSpace(cfg.Paths.ProjectRoot) == "" {
		root = DetectProjectRoot(scan, cwd)
	}

	out := ResolvedPaths{
		ProjectRoot: root,
		DatabaseDir: ResolveRelative(root, cfg.Paths.DatabaseDir),
		ScanPaths:   scan,
	}
	out.DBPath = ResolveRelative(out.DatabaseDir, cfg.DB.Path)
	if cfg.Cache.IsEnabled() {
		out.CacheDir = ResolveRelative(root, cfg.Paths.CacheDir)
	}
	return out, nil
}

// ResolveRelative joins value onto base unless value is already absolute.
// A blank value yields base.
func ResolveRelative(base, value string) string {
	value = strings.TrimSpace(value)
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(base, value)
}

// DetectProjectRoot returns the nearest ancestor of the first candidate that
// holds a project marker. Without a match it returns fallback.
func DetectProjectRoot(candidates []string, fallback string) string {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if root, ok := markerRoot(candidate); ok {
			return root
		}
	}
	return filepath.Clean(fallback)
}

func markerRoot(start string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
