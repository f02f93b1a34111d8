package util

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./foo/bar  ", expected: "foo/bar"},
		{name: "Relative", input: "foo/../bar", expected: "bar"},
		{name: "Backslashes", input: `src\Debug\Dump.php`, expected: "src/Debug/Dump.php"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestUniqueRoots(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := filepath.Join(dir, "b")
	a := filepath.Join(dir, "a")

	roots := UniqueRoots([]string{b, a, b + string(filepath.Separator), filepath.Join(a, "x", "..")})
	if len(roots) != 2 || roots[0] != a || roots[1] != b {
		t.Fatalf("unexpected roots %v", roots)
	}
}

func TestCompileGlobsAndMatchAny(t *testing.T) {
	t.Parallel()

	globs, err := CompileGlobs([]string{"src/Debug/**", "*.tpl.php"}, "skip", '/')
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	cases := []struct {
		values   []string
		expected bool
	}{
		{values: []string{"src/Debug/Dump.php"}, expected: true},
		{values: []string{"src/Debug/Deep/Trace.php"}, expected: true},
		{values: []string{"src/App/Kernel.php", "Kernel.php"}, expected: false},
		{values: []string{"views/home.tpl.php", "home.tpl.php"}, expected: true},
		{values: []string{""}, expected: false},
	}
	for _, tc := range cases {
		if got := MatchAny(globs, tc.values...); got != tc.expected {
			t.Fatalf("MatchAny(%v) = %v, expected %v", tc.values, got, tc.expected)
		}
	}
}

func TestCompileGlobs_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := CompileGlobs([]string{"ok", "[abc"}, "exclude file")
	if err == nil || !strings.Contains(err.Error(), `invalid exclude file pattern "[abc"`) {
		t.Fatalf("unexpected error %v", err)
	}
}
