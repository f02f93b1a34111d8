package app

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"inspector/internal/shared/util"
)

// ScanDirectories walks roots and returns the sorted, de-duplicated list of
// source files, honouring extension filters and exclude globs. A root that
// names a file is returned as is when its extension matches.
func (a *App) ScanDirectories(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, root := range util.UniqueRoots(roots) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && util.MatchAny(a.excludeDirs, base) {
					return filepath.SkipDir
				}
				return nil
			}

			if !a.extensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if util.MatchAny(a.excludeFiles, base) {
				return nil
			}

			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *App) skipDynamicOutput(file string) bool {
	if len(a.skipDynamic) == 0 {
		return false
	}
	rel := file
	if a.Paths.ProjectRoot != "" {
		if r, err := filepath.Rel(a.Paths.ProjectRoot, file); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	return util.MatchAny(a.skipDynamic, util.NormalizePatternPath(rel), filepath.Base(file))
}
